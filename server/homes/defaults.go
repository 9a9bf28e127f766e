package homes

import (
	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/teleport"
)

// Configuration keys read by the extension itself.
const (
	KeyDataFormat   = "data.format"
	KeyAutoSave     = "data.auto-save-interval"
	KeyAdmins       = "admins"
	KeyIcons        = "guis.icon-menu.items.available-icons"
	KeyWatchConfig  = "config.watch"
	FormatYAML      = "yaml"
	FormatSQLite    = "sqlite"
	defaultAutoSave = 5
)

// Defaults is the configuration written to config.yml on first start. Keys
// are flat; nested maps are produced when the file is written.
var Defaults = map[string]any{
	KeyDataFormat:  FormatYAML,
	KeyAutoSave:    defaultAutoSave,
	KeyAdmins:      []string{},
	KeyWatchConfig: true,

	home.KeyNamePattern:    home.DefaultNamePattern,
	home.KeyDefaultLimit:   home.DefaultLimit,
	home.KeySlots:          home.DefaultSlots,
	home.KeyWorldBlacklist: []string{},
	home.KeyDefaultIcon:    home.DefaultIcon,

	teleport.KeyWarmup:                             teleport.DefaultWarmup,
	teleport.KeyCancelOnMove:                       true,
	teleport.KeyCancelOnDamage:                     true,
	teleport.KeyMoveThreshold:                      teleport.DefaultMoveThreshold,
	teleport.KeyBlackscreen:                        true,
	teleport.KeyBlackscreenDelay:                   teleport.DefaultBlackscreenDelay,
	teleport.KeyBlackscreenLength:                  teleport.DefaultBlackscreenLength,
	teleport.KeySoundsEnabled:                      true,
	teleport.KeySoundPrefix + teleport.SoundStart:  "entity.enderman.teleport",
	teleport.KeySoundPrefix + teleport.SoundEnd:    "entity.player.levelup",
	teleport.KeySoundPrefix + teleport.SoundCancel: "block.fire.extinguish",

	KeyIcons: []string{
		"bed", "diamond", "emerald", "gold_ingot", "iron_ingot", "ender_pearl",
		"compass", "map", "chest", "apple", "book", "nether_star",
	},
}

// Defaults for every message the extension sends, keyed the way they are
// looked up. They are written below "messages." or at their full path in
// config.yml.
var DefaultMessages = map[string]string{
	"home-created":            "<green>Home <yellow>{home_name}</yellow> created.</green>",
	"home-deleted":            "<green>Home <yellow>{home_name}</yellow> deleted.</green>",
	"home-renamed":            "<green>Home <yellow>{old_name}</yellow> renamed to <yellow>{home_name}</yellow>.</green>",
	"home-icon-changed":       "<green>Icon of <yellow>{home_name}</yellow> changed.</green>",
	"home-list-header":        "<gold>Your homes ({count}/{max}):</gold>",
	"home-list-entry":         "<yellow>{home_name}</yellow> <gray>{world} {x}, {y}, {z}</gray>",
	"home-list-empty":         "<gray>You have no homes yet.</gray>",
	"home-info-header":        "<gold>Home information: <yellow>{home_name}</yellow></gold>",
	"home-info-world":         "<gray>World: <white>{world}</white></gray>",
	"home-info-location":      "<gray>Location: <white>{x}, {y}, {z}</white></gray>",
	"home-info-created":       "<gray>Created: <white>{created}</white></gray>",
	"teleport-success":        "<green>Welcome to <yellow>{home_name}</yellow>.</green>",
	"teleport-none-pending":   "<red>You have no pending teleport.</red>",
	"plugin-reloaded":         "<green>Configuration reloaded.</green>",
	"plugin-disabled":         "<red>Homes are currently disabled.</red>",
	"help-header":             "<gold>Homes commands:</gold>",
	"help-list":               "<yellow>/dmhomes list</yellow> <gray>- List your homes</gray>",
	"help-info":               "<yellow>/dmhomes info [home]</yellow> <gray>- Show home information</gray>",
	"help-cancel":             "<yellow>/dmhomes cancel</yellow> <gray>- Cancel a pending teleport</gray>",
	"help-help":               "<yellow>/dmhomes help</yellow> <gray>- Show this help</gray>",
	"help-reload":             "<yellow>/dmhomes reload</yellow> <gray>- Reload the configuration</gray>",
	"help-stats":              "<yellow>/dmhomes stats</yellow> <gray>- Show teleport statistics</gray>",
	"teleport-stats":          "<gold>Teleports:</gold> <gray>{requested} requested, {completed} completed, {failed} failed, {cancelled} cancelled ({move} move, {damage} damage, {disconnect} disconnect, {manual} manual)</gray>",
	"error-invalid-name":      "<red>That home name is not allowed.</red>",
	"error-home-exists":       "<red>You already have a home called <yellow>{home_name}</yellow>.</red>",
	"error-home-not-found":    "<red>You have no home called <yellow>{home_name}</yellow>.</red>",
	"error-max-homes":         "<red>You reached your limit of {max} homes.</red>",
	"error-upgrade-required":  "<red>This slot is locked. Upgrade your rank to unlock more homes.</red>",
	"error-world-blacklisted": "<red>Homes cannot be set in <yellow>{world}</yellow>.</red>",
	"error-invalid-icon":      "<red>That icon is not available.</red>",
	"error-no-permission":     "<red>You do not have permission to do that.</red>",
	"error-player-only":       "<red>/{command} can only be used by players.</red>",
	"error-generic":           "<red>Something went wrong: {error}</red>",

	teleport.MsgWarmupTitle:                      "<gold>Teleporting</gold>",
	teleport.MsgWarmupSubtitle:                   "<yellow>Don't move for {time}s</yellow>",
	teleport.MsgBlackscreenTitle:                 "<black>█</black>",
	teleport.MsgCancelledTitle:                   "<red>Teleport cancelled</red>",
	teleport.MsgCancelledSubtitle + "move":       "<gray>You moved</gray>",
	teleport.MsgCancelledSubtitle + "damage":     "<gray>You took damage</gray>",
	teleport.MsgCancelledSubtitle + "disconnect": "<gray>You disconnected</gray>",
	teleport.MsgCancelledSubtitle + "manual":     "<gray>Cancelled</gray>",
	teleport.MsgCancelled + "move":               "<red>Teleport cancelled because you moved.</red>",
	teleport.MsgCancelled + "damage":             "<red>Teleport cancelled because you took damage.</red>",
	teleport.MsgCancelled + "disconnect":         "<red>Teleport cancelled because you disconnected.</red>",
	teleport.MsgCancelled + "manual":             "<red>Teleport cancelled.</red>",

	"guis.main-menu.title":                         "<dark-aqua>Your homes</dark-aqua>",
	"guis.main-menu.body":                          "<gray>{count}/{max} homes</gray>",
	"guis.main-menu.occupied-slot.name":            "<dark-green>{home_name}</dark-green>\n<dark-grey>{home_world} {home_x}, {home_y}, {home_z}</dark-grey>",
	"guis.main-menu.available-slot.name":           "<dark-aqua>+ New home</dark-aqua>",
	"guis.main-menu.unavailable-slot.name":         "<dark-grey>Locked slot</dark-grey>",
	"guis.main-menu.close-button.name":             "<red>Close</red>",
	"guis.management-menu.title":                   "<dark-aqua>{home_name}</dark-aqua>",
	"guis.management-menu.body":                    "<gray>{home_world} {home_x}, {home_y}, {home_z}</gray>",
	"guis.management-menu.teleport-button.name":    "<dark-green>Teleport</dark-green>",
	"guis.management-menu.rename-button.name":      "<gold>Rename</gold>",
	"guis.management-menu.change-icon-button.name": "<dark-aqua>Change icon</dark-aqua>",
	"guis.management-menu.delete-button.name":      "<red>Delete</red>",
	"guis.management-menu.back-button.name":        "<dark-grey>Back</dark-grey>",
	"guis.icon-menu.title":                         "<dark-aqua>Icon for {home_name}</dark-aqua>",
	"guis.icon-menu.back-button.name":              "<dark-grey>Back</dark-grey>",
	"guis.create-dialog.title":                     "New home",
	"guis.create-dialog.input":                     "Home name",
	"guis.create-dialog.placeholder":               "base",
	"guis.rename-dialog.title":                     "Rename {home_name}",
	"guis.rename-dialog.input":                     "New name",
	"guis.delete-dialog.title":                     "Delete {home_name}?",
	"guis.delete-dialog.body":                      "The home at {home_world} {home_x}, {home_y}, {home_z} will be removed.",
	"guis.delete-dialog.confirm":                   "Delete",
	"guis.delete-dialog.cancel":                    "Keep",
}
