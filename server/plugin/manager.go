// Package plugin enables, disables and reloads the extensions compiled into
// the server, and routes player events to the handlers they subscribe.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/player"
)

// Manager keeps track of the enabled plugins. Its methods are safe for
// concurrent use.
type Manager[S any, C any] struct {
	host   Host[S, C]
	conf   Config
	log    *slog.Logger
	root   string
	events *hub
	serial atomic.Uint64

	mu      sync.RWMutex
	enabled []*extension[S, C]
}

// extension is one enabled plugin instance.
type extension[S any, C any] struct {
	// name is the name the plugin was enabled under. Its data directory is
	// derived from it.
	name    string
	factory Factory[S, C]
	plugin  Plugin
	api     *API[S, C]
	cancel  context.CancelFunc
}

// is reports if name refers to e, either by the name it was enabled under or
// by the name the plugin reports.
func (e *extension[S, C]) is(name string) bool {
	return strings.EqualFold(e.name, name) || strings.EqualFold(e.plugin.Name(), name)
}

func (e *extension[S, C]) info() Info {
	info := Info{Name: e.plugin.Name(), DataDirectory: e.api.dir}
	if info.Name == "" {
		info.Name = e.name
	}
	if v, ok := e.plugin.(VersionedPlugin); ok {
		info.Version = v.Version()
	}
	return info
}

// NewManager returns a Manager enabling plugins on host.
func NewManager[S any, C any](host Host[S, C], conf Config) *Manager[S, C] {
	log := host.Logger()
	if log == nil {
		log = slog.Default()
	}
	root := strings.TrimSpace(conf.DataDirectory)
	if root == "" {
		root = "plugins"
	}
	m := &Manager[S, C]{host: host, conf: conf, log: log, root: filepath.Clean(root), events: &hub{}}
	m.events.panicked = m.fail
	return m
}

// Enabled reports if the plugin subsystem is turned on.
func (m *Manager[S, C]) Enabled() bool { return m.conf.Enabled }

// DataRoot is the directory holding the data directories of all plugins.
func (m *Manager[S, C]) DataRoot() string { return m.root }

// Infos describes the enabled plugins in the order they were enabled.
func (m *Manager[S, C]) Infos() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, len(m.enabled))
	for i, e := range m.enabled {
		infos[i] = e.info()
	}
	return infos
}

// Plugin looks up an enabled plugin. name is matched case-insensitively
// against both the name it was enabled under and its own name.
func (m *Manager[S, C]) Plugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(name); i >= 0 {
		return m.enabled[i].plugin, true
	}
	return nil, false
}

// index must be called with mu held.
func (m *Manager[S, C]) index(name string) int {
	return slices.IndexFunc(m.enabled, func(e *extension[S, C]) bool { return e.is(name) })
}

// Enable builds the plugin returned by factory under name and starts routing
// events to it. The plugin gets the data directory name inside DataRoot.
func (m *Manager[S, C]) Enable(name string, factory Factory[S, C]) (Info, error) {
	name = strings.TrimSpace(name)
	switch {
	case !m.conf.Enabled:
		return Info{}, ErrDisabled
	case name == "" || factory == nil:
		return Info{}, errors.New("enable plugin: name and factory are required")
	case slices.ContainsFunc(m.conf.Disabled, func(d string) bool { return strings.EqualFold(strings.TrimSpace(d), name) }):
		return Info{}, fmt.Errorf("enable %s: %w", name, ErrDisabled)
	}
	if _, ok := m.Plugin(name); ok {
		return Info{}, fmt.Errorf("enable %s: %w", name, ErrNameConflict)
	}

	e, err := m.build(name, factory)
	if err != nil {
		return Info{}, fmt.Errorf("enable %s: %w", name, err)
	}
	m.mu.Lock()
	if m.index(e.name) >= 0 || m.index(e.plugin.Name()) >= 0 {
		m.mu.Unlock()
		_ = m.stop(e)
		return Info{}, fmt.Errorf("enable %s: %w", name, ErrNameConflict)
	}
	m.enabled = append(m.enabled, e)
	m.mu.Unlock()

	info := e.info()
	m.log.Info("Plugin enabled.", "name", info.Name, "version", info.Version)
	return info, nil
}

// build runs factory with a fresh API. Subscriptions made by a factory that
// fails are dropped again.
func (m *Manager[S, C]) build(name string, factory Factory[S, C]) (e *extension[S, C], err error) {
	dir := filepath.Join(m.root, sanitizePluginDirectory(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	api := &API[S, C]{manager: m, host: m.host, name: name, dir: dir, ctx: ctx}
	api.owner = fmt.Sprintf("%s#%d", name, m.serial.Add(1))

	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("factory panicked: %v", r)
		}
		if err != nil {
			cancel()
			m.events.clear(api.owner)
		}
	}()
	p, err := factory(api)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("factory returned no plugin")
	}
	return &extension[S, C]{name: name, factory: factory, plugin: p, api: api, cancel: cancel}, nil
}

// Disable closes the plugin with the name passed and drops its event
// subscriptions.
func (m *Manager[S, C]) Disable(name string) (Info, error) {
	e, err := m.take(name)
	if err != nil {
		return Info{}, err
	}
	info := e.info()
	return info, m.stop(e)
}

// take removes the plugin with the name passed from the enabled list.
func (m *Manager[S, C]) take(name string) (*extension[S, C], error) {
	if !m.conf.Enabled {
		return nil, ErrDisabled
	}
	name = strings.TrimSpace(name)
	e, ok := m.remove(func(e *extension[S, C]) bool { return e.is(name) })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, nil
}

func (m *Manager[S, C]) remove(match func(*extension[S, C]) bool) (*extension[S, C], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.enabled, match)
	if i < 0 {
		return nil, false
	}
	e := m.enabled[i]
	m.enabled = slices.Delete(m.enabled, i, i+1)
	return e, true
}

// stop unsubscribes e, cancels its context and closes it.
func (m *Manager[S, C]) stop(e *extension[S, C]) (err error) {
	m.events.clear(e.api.owner)
	e.cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("close panicked: %v", r)
		}
		if err != nil {
			m.log.Error("Close plugin.", "name", e.name, "error", err)
			err = fmt.Errorf("disable %s: %w", e.name, err)
			return
		}
		m.log.Info("Plugin disabled.", "name", e.name)
	}()
	return e.plugin.Close()
}

// Reload disables the plugin with the name passed and enables it again from
// the same factory, so that it rereads its files.
func (m *Manager[S, C]) Reload(name string) (Info, error) {
	e, err := m.take(name)
	if err != nil {
		return Info{}, err
	}
	// A failed close is logged by stop and does not prevent the new instance.
	_ = m.stop(e)
	return m.Enable(e.name, e.factory)
}

// DisableAll disables every plugin, the last enabled first.
func (m *Manager[S, C]) DisableAll() ([]Info, error) {
	if !m.conf.Enabled {
		return nil, ErrDisabled
	}
	m.mu.Lock()
	all := m.enabled
	m.enabled = nil
	m.mu.Unlock()

	infos := make([]Info, 0, len(all))
	var errs []error
	for _, e := range slices.Backward(all) {
		infos = append(infos, e.info())
		errs = append(errs, m.stop(e))
	}
	return infos, errors.Join(errs...)
}

// Shutdown disables every plugin. It is meant to be deferred by the program
// running the server.
func (m *Manager[S, C]) Shutdown() {
	if _, err := m.DisableAll(); err != nil && !errors.Is(err, ErrDisabled) {
		m.log.Error("Shut plugins down.", "error", err)
	}
}

// fail handles a panic raised by the plugin instance owning the subscription
// or goroutine. Its subscriptions are dropped right away. Closing happens on
// another goroutine as the panic may have been raised inside a transaction
// that Close needs.
func (m *Manager[S, C]) fail(owner string, reason any) {
	m.log.Error("Plugin panicked, disabling it.", "owner", owner, "panic", reason, "stack", string(debug.Stack()))
	m.events.clear(owner)
	go func() {
		if e, ok := m.remove(func(e *extension[S, C]) bool { return e.api.owner == owner }); ok {
			_ = m.stop(e)
		}
	}()
}

// PlayerHandlerWrap returns the handler to set on p: base, with the handlers
// subscribed by plugins running in front of it. Wrapping an already wrapped
// handler wraps its base instead.
func (m *Manager[S, C]) PlayerHandlerWrap(_ *player.Player, base player.Handler) player.Handler {
	if c, ok := base.(*chain); ok {
		base = c.Handler
	}
	if base == nil {
		base = player.NopHandler{}
	}
	return &chain{Handler: base, hub: m.events}
}

// PlayerJoined calls the join subscriptions of all plugins for p.
func (m *Manager[S, C]) PlayerJoined(p *player.Player) { m.events.joined(p) }

// sanitizePluginDirectory turns a plugin name into a directory name made of
// lower case letters, digits, dots, dashes and underscores.
func sanitizePluginDirectory(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	if dir := strings.Trim(b.String(), "-"); dir != "" {
		return dir
	}
	return "plugin"
}
