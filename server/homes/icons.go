package homes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Menu button images for icons whose texture is not named after the icon.
var iconTextures = map[string]string{
	"bed":               "textures/items/bed_red",
	"compass":           "textures/items/compass_item",
	"map":               "textures/items/map_empty",
	"book":              "textures/items/book_normal",
	"chest":             "textures/blocks/chest_front",
	"crafting_table":    "textures/blocks/crafting_table_front",
	"furnace":           "textures/blocks/furnace_front_off",
	"grass_block":       "textures/blocks/grass_side_carried",
	"oak_log":           "textures/blocks/log_oak",
	"red_bed":           "textures/items/bed_red",
	"clock":             "textures/items/clock_item",
	"golden_apple":      "textures/items/apple_golden",
	"enchanted_book":    "textures/items/book_enchanted",
	"experience_bottle": "textures/items/experience_bottle",
}

// IconTexture returns the menu button image of icon.
func IconTexture(icon string) string {
	icon = strings.ToLower(strings.TrimSpace(icon))
	if icon == "" {
		return ""
	}
	if tex, ok := iconTextures[icon]; ok {
		return tex
	}
	return "textures/items/" + icon
}

// IconName returns the display name of icon, such as "Gold Ingot" for
// "gold_ingot".
func IconName(icon string) string {
	icon = strings.TrimSpace(icon)
	if i := strings.LastIndexByte(icon, ':'); i >= 0 {
		icon = icon[i+1:]
	}
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(icon), "_", " "))
}
