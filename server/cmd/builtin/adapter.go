package builtin

import (
	"iter"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/plugin"
)

// Server is the part of the server the built-in commands use. It is satisfied
// by *server.Server.
type Server interface {
	Players(tx *world.Tx) iter.Seq[*player.Player]
	MaxPlayerCount() int
	Close() error
}

// Extensions is the extension manager driven by /extension. It is satisfied by
// *plugin.Catalog.
type Extensions interface {
	Enabled() bool
	Infos() []plugin.Info
	Names() []string
	EnableNamed(name string) (plugin.Info, error)
	Disable(name string) (plugin.Info, error)
	Reload(name string) (plugin.Info, error)
}
