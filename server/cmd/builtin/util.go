package builtin

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/dm-vev/homes/server/plugin"
)

// consoleOnly is embedded by commands that players may not run.
type consoleOnly struct{}

func (consoleOnly) Allow(src cmd.Source) bool {
	_, isPlayer := src.(*player.Player)
	return !isPlayer
}

// describe formats an extension as "name v1.0.0".
func describe(info plugin.Info) string {
	if info.Version == "" {
		return info.Name
	}
	return info.Name + " v" + info.Version
}
