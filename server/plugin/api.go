package plugin

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// API is handed to a Factory and gives the plugin it builds access to the
// server. An API is bound to one enabled instance: its context is cancelled
// and its event subscriptions are dropped when that instance is disabled.
type API[S any, C any] struct {
	manager *Manager[S, C]
	host    Host[S, C]
	name    string
	// owner identifies this instance in event subscriptions.
	owner   string
	dir     string
	ctx     context.Context
}

// Context is cancelled once the plugin is disabled.
func (api *API[S, C]) Context() context.Context { return api.ctx }

// DataDirectory is the folder reserved for the plugin's files.
func (api *API[S, C]) DataDirectory() string { return api.dir }

var (
	errEmptyDataPath  = errors.New("data path is empty")
	errAbsDataPath    = errors.New("data path must be relative")
	errEscapeDataPath = errors.New("data path leaves the plugin directory")
)

// DataPath joins name onto the data directory. name must be relative and stay
// inside the directory.
func (api *API[S, C]) DataPath(name string) (string, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return "", errEmptyDataPath
	case filepath.IsAbs(name):
		return "", errAbsDataPath
	}
	rel := filepath.Clean(name)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errEscapeDataPath
	}
	return filepath.Join(api.dir, rel), nil
}

// EnsureDataSubdir creates the directory name inside the data directory if it
// does not exist yet and returns its path. An empty name refers to the data
// directory itself.
func (api *API[S, C]) EnsureDataSubdir(name string) (string, error) {
	dir := api.dir
	if name != "" {
		var err error
		if dir, err = api.DataPath(name); err != nil {
			return "", err
		}
	}
	return dir, os.MkdirAll(dir, 0o755)
}

// Go runs fn on its own goroutine. A panic in fn disables the plugin.
func (api *API[S, C]) Go(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	go api.manager.events.guard(api.owner, func() { fn(api.ctx) })
}

// Logger returns the host logger with the plugin name attached.
func (api *API[S, C]) Logger() *slog.Logger {
	return api.manager.log.With("plugin", api.name)
}

// Server returns the server the plugin runs in.
func (api *API[S, C]) Server() S { return api.host.Instance() }

// Config returns the configuration the server was created with.
func (api *API[S, C]) Config() C { return api.host.Config() }

func (api *API[S, C]) World() *world.World  { return api.host.World() }
func (api *API[S, C]) Nether() *world.World { return api.host.Nether() }
func (api *API[S, C]) End() *world.World    { return api.host.End() }

// Player finds an online player by UUID.
func (api *API[S, C]) Player(id uuid.UUID) (*world.EntityHandle, bool) {
	return api.host.Player(id)
}

// PlayerByName finds an online player by name.
func (api *API[S, C]) PlayerByName(name string) (*world.EntityHandle, bool) {
	return api.host.PlayerByName(name)
}

// RegisterCommand adds command to the global command map.
func (api *API[S, C]) RegisterCommand(command cmd.Command) { cmd.Register(command) }

// ExecuteCommand runs commandLine as source. It blocks on the overworld, so
// it must not be called from inside a transaction.
func (api *API[S, C]) ExecuteCommand(source cmd.Source, commandLine string) bool {
	return api.host.ExecuteCommand(source, commandLine)
}

// Events returns the event subscriptions of the plugin.
func (api *API[S, C]) Events() Events {
	return Events{hub: api.manager.events, owner: api.owner}
}

// Events subscribes a plugin to player events. Every subscription is dropped
// when the plugin is disabled, so the returned removal funcs only need to be
// called to unsubscribe earlier.
type Events struct {
	hub   *hub
	owner string
}

// OnPlayer subscribes h to the move, teleport, world change, chat, hurt,
// death and quit events of every player. Handlers run in subscription order
// before the player's own handler. Once a handler cancels the event, later
// handlers are skipped.
func (e Events) OnPlayer(h player.Handler) func() {
	if h == nil {
		return func() {}
	}
	return e.hub.players.add(e.owner, h)
}

// OnJoin subscribes fn to players joining. fn runs in the transaction of the
// joining player.
func (e Events) OnJoin(fn func(p *player.Player)) func() {
	if fn == nil {
		return func() {}
	}
	return e.hub.joins.add(e.owner, fn)
}

// Clear drops every subscription of the plugin.
func (e Events) Clear() { e.hub.clear(e.owner) }
