package plugin

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// Host is the server a Manager runs plugins on. S and C are the server and
// server configuration types, which plugins reach through API.Server and
// API.Config.
type Host[S any, C any] interface {
	Instance() S
	Config() C
	Logger() *slog.Logger
	World() *world.World
	Nether() *world.World
	End() *world.World
	Player(id uuid.UUID) (*world.EntityHandle, bool)
	PlayerByName(name string) (*world.EntityHandle, bool)
	// ExecuteCommand runs commandLine as source and reports if the command
	// exists.
	ExecuteCommand(source cmd.Source, commandLine string) bool
}
