package builtin

import (
	"github.com/df-mc/dragonfly/server/cmd"
)

// Register registers the built-in command set.
func Register(srv Server, ext Extensions) {
	cmd.Register(newHelpCommand())
	cmd.Register(newListCommand(srv))
	cmd.Register(newStopCommand(srv))
	cmd.Register(newExtensionCommand(ext))
}
