// Package dfhost connects the homes extensions to a running Dragonfly server:
// the plugin host, the actors the teleport coordinator moves and the
// presenter that shows them feedback.
package dfhost

import (
	"log/slog"
	"strings"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/plugin"
	"github.com/google/uuid"
)

// Host implements plugin.Host for a Dragonfly server.
type Host struct {
	srv  *server.Server
	conf server.Config
}

// NewHost returns a Host for srv, created from conf.
func NewHost(srv *server.Server, conf server.Config) *Host {
	return &Host{srv: srv, conf: conf}
}

func (h *Host) Instance() *server.Server {
	return h.srv
}

func (h *Host) Config() server.Config {
	return h.conf
}

func (h *Host) Logger() *slog.Logger {
	return h.conf.Log
}

func (h *Host) World() *world.World {
	return h.srv.World()
}

func (h *Host) Nether() *world.World {
	return h.srv.Nether()
}

func (h *Host) End() *world.World {
	return h.srv.End()
}

func (h *Host) Player(id uuid.UUID) (*world.EntityHandle, bool) {
	return h.srv.Player(id)
}

func (h *Host) PlayerByName(name string) (*world.EntityHandle, bool) {
	return h.srv.PlayerByName(name)
}

// ExecuteCommand runs commandLine in the overworld transaction. It blocks until
// the command has run, so it must not be called from within a transaction.
func (h *Host) ExecuteCommand(source cmd.Source, commandLine string) bool {
	name, args := SplitCommandLine(commandLine)
	if name == "" {
		return false
	}
	command, ok := cmd.ByAlias(name)
	if !ok {
		return false
	}
	<-h.srv.World().Exec(func(tx *world.Tx) {
		command.Execute(args, source, tx)
	})
	return true
}

// SplitCommandLine splits a command line into the lower-cased command name and
// its argument string. A leading slash is optional.
func SplitCommandLine(line string) (name, args string) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, args, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

var _ plugin.Host[*server.Server, server.Config] = (*Host)(nil)
