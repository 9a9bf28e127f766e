package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrEmptyPath is returned by Load when no configuration path is given.
var ErrEmptyPath = errors.New("config path must not be empty")

// Provider serves typed lookups from a YAML file layered over a set of
// defaults. Keys use dots to address nested values, for example
// "teleportation.warmup-time". A Provider is safe for concurrent use; Reload
// swaps the whole snapshot at once.
type Provider struct {
	path     string
	defaults map[string]any
	log      *slog.Logger

	mu sync.RWMutex
	v  *viper.Viper
}

// Load reads the YAML file at path on top of defaults. If the file does not
// exist it is created from the defaults first.
func Load(path string, defaults map[string]any, log *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Provider{path: filepath.Clean(path), defaults: defaults, log: log}
	if _, err := os.Stat(p.path); errors.Is(err, fs.ErrNotExist) {
		if err := WriteDefaults(p.path, defaults); err != nil {
			return nil, err
		}
		log.Info("Created default configuration.", "path", p.path)
	} else if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the file the Provider reads from.
func (p *Provider) Path() string {
	return p.path
}

// Reload re-reads the configuration file. On error the previous values stay in
// effect.
func (p *Provider) Reload() error {
	v := viper.New()
	for key, value := range p.defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(p.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", p.path, err)
	}
	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
	return nil
}

func (p *Provider) snapshot() *viper.Viper {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v
}

// IsSet reports if key has a value in the file or the defaults.
func (p *Provider) IsSet(key string) bool {
	return p.snapshot().IsSet(key)
}

// Int returns the integer at key or def.
func (p *Provider) Int(key string, def int) int {
	v := p.snapshot()
	if !v.IsSet(key) {
		return def
	}
	return v.GetInt(key)
}

// Bool returns the boolean at key or def.
func (p *Provider) Bool(key string, def bool) bool {
	v := p.snapshot()
	if !v.IsSet(key) {
		return def
	}
	return v.GetBool(key)
}

// Float returns the float at key or def.
func (p *Provider) Float(key string, def float64) float64 {
	v := p.snapshot()
	if !v.IsSet(key) {
		return def
	}
	return v.GetFloat64(key)
}

// String returns the string at key or def.
func (p *Provider) String(key string, def string) string {
	v := p.snapshot()
	if !v.IsSet(key) {
		return def
	}
	return v.GetString(key)
}

// Strings returns the string list at key or def.
func (p *Provider) Strings(key string, def []string) []string {
	v := p.snapshot()
	if !v.IsSet(key) {
		return def
	}
	return v.GetStringSlice(key)
}

// Keys returns the names of the direct children of key in sorted order.
func (p *Provider) Keys(key string) []string {
	sub := p.snapshot().GetStringMap(key)
	keys := make([]string, 0, len(sub))
	for k := range sub {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unmarshal decodes the value at key into out using mapstructure tags.
func (p *Provider) Unmarshal(key string, out any) error {
	if err := p.snapshot().UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// WriteDefaults writes defaults to path as nested YAML.
func WriteDefaults(path string, defaults map[string]any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := yaml.Marshal(Nest(defaults))
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Nest turns a map of dotted keys into nested maps.
func Nest(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}
