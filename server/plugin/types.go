package plugin

import "errors"

// Plugin is an extension built into the binary.
type Plugin interface {
	// Name is shown in listings and may be used to look the plugin up.
	Name() string
	// Close is called once, when the plugin is disabled or the server stops.
	Close() error
}

// VersionedPlugin is a Plugin reporting its version.
type VersionedPlugin interface {
	Version() string
}

// Factory builds a Plugin. The plugin is live as soon as Factory returns, so
// any subscription it made must be ready for events.
type Factory[S any, C any] func(api *API[S, C]) (Plugin, error)

// Info is a snapshot of an enabled plugin.
type Info struct {
	Name          string
	Version       string
	DataDirectory string
}

var (
	ErrDisabled     = errors.New("plugins are disabled")
	ErrNameConflict = errors.New("a plugin with this name is already enabled")
	ErrNotFound     = errors.New("no plugin with this name is enabled")
)
