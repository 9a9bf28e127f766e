package plugin

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Catalog lists the plugins compiled into the binary by name, so that they can
// be enabled again after being disabled at runtime.
type Catalog[S any, C any] struct {
	*Manager[S, C]

	names     []string
	factories map[string]Factory[S, C]
}

// NewCatalog returns an empty Catalog enabling plugins through m.
func NewCatalog[S any, C any](m *Manager[S, C]) *Catalog[S, C] {
	return &Catalog[S, C]{Manager: m, factories: make(map[string]Factory[S, C])}
}

// Add registers factory under name. Adding a name twice replaces the factory.
func (c *Catalog[S, C]) Add(name string, factory Factory[S, C]) {
	key := strings.ToLower(name)
	if _, ok := c.factories[key]; !ok {
		c.names = append(c.names, name)
	}
	c.factories[key] = factory
}

// Names returns the registered plugin names in the order they were added.
func (c *Catalog[S, C]) Names() []string {
	return slices.Clone(c.names)
}

// EnableNamed enables the plugin registered under name.
func (c *Catalog[S, C]) EnableNamed(name string) (Info, error) {
	name = strings.TrimSpace(name)
	factory, ok := c.factories[strings.ToLower(name)]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c.Enable(name, factory)
}

// EnableAll enables every registered plugin in order. Plugins disabled by
// configuration are skipped; other failures are logged and returned joined.
func (c *Catalog[S, C]) EnableAll() error {
	var errs []error
	for _, name := range c.names {
		_, err := c.Enable(name, c.factories[strings.ToLower(name)])
		if err != nil && !errors.Is(err, ErrDisabled) {
			c.log.Error("Enable plugin.", "name", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
