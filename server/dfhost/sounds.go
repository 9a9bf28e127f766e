package dfhost

import (
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/sound"
)

var sounds = map[string]world.Sound{
	"teleport":   sound.Teleport{},
	"click":      sound.Click{},
	"level_up":   sound.LevelUp{},
	"experience": sound.Experience{},
	"pop":        sound.Pop{},
	"item_break": sound.ItemBreak{},
	"item_throw": sound.ItemThrow{},
	"explosion":  sound.Explosion{},
	"thunder":    sound.Thunder{},
	"burp":       sound.Burp{},
	"totem":      sound.Totem{},
	"extinguish": sound.FireExtinguish{},
	"firework":   sound.FireworkLaunch{},
	"twinkle":    sound.FireworkTwinkle{},
}

// Configuration files written for other servers name sounds the Java way.
var soundAliases = map[string]string{
	"entity_enderman_teleport":      "teleport",
	"entity_player_teleport":        "teleport",
	"ui_button_click":               "click",
	"entity_player_levelup":         "level_up",
	"entity_experience_orb_pickup":  "experience",
	"entity_item_pickup":            "pop",
	"block_fire_extinguish":         "extinguish",
	"block_lava_extinguish":         "extinguish",
	"entity_item_break":             "item_break",
	"entity_generic_explode":        "explosion",
	"item_totem_use":                "totem",
	"entity_firework_rocket_launch": "firework",
}

// SoundByName returns the sound registered under name. Names are matched case
// insensitively, with '.', '-' and ' ' treated like '_'.
func SoundByName(name string) (world.Sound, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(key)
	if alias, ok := soundAliases[key]; ok {
		key = alias
	}
	s, ok := sounds[key]
	return s, ok
}
