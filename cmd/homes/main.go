// Command homes runs a Dragonfly server with the homes and rules extensions
// built in.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/dm-vev/homes/server/cmd/builtin"
	"github.com/dm-vev/homes/server/console"
	"github.com/dm-vev/homes/server/dfhost"
	"github.com/dm-vev/homes/server/homes"
	"github.com/dm-vev/homes/server/plugin"
	"github.com/dm-vev/homes/server/rules"
	"github.com/dm-vev/homes/server/tick"
	"github.com/pelletier/go-toml"
)

const tickInterval = 50 * time.Millisecond

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	chat.Global.Subscribe(chat.StdoutSubscriber{})

	uc, err := readConfig("config.toml", server.DefaultConfig())
	if err != nil {
		log.Error("Read server configuration.", "error", err)
		os.Exit(1)
	}
	ec, err := readConfig("extensions.toml", extensionConfig{Enabled: true, Directory: "plugins"})
	if err != nil {
		log.Error("Read extension configuration.", "error", err)
		os.Exit(1)
	}
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("Create server configuration.", "error", err)
		os.Exit(1)
	}
	srv := conf.New()
	srv.CloseOnProgramEnd()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched := tick.NewScheduler(log)
	go sched.Run(ctx, tickInterval)

	host := dfhost.NewHost(srv, conf)
	catalog := plugin.NewCatalog(plugin.NewManager[*server.Server, server.Config](host, plugin.Config{
		Enabled:       ec.Enabled,
		DataDirectory: ec.Directory,
		Disabled:      ec.Disabled,
	}))
	catalog.Add(homes.Name, homes.New[*server.Server, server.Config](sched))
	catalog.Add(rules.Name, rules.New[*server.Server, server.Config]())
	builtin.Register(srv, catalog)
	if err := catalog.EnableAll(); err != nil {
		log.Error("Enable extensions.", "error", err)
	}
	defer catalog.Shutdown()

	go console.New(host, log).Run(ctx)

	srv.Listen()
	for p := range srv.Accept() {
		p.Handle(catalog.PlayerHandlerWrap(p, player.NopHandler{}))
		catalog.PlayerJoined(p)
	}
}

// extensionConfig is the content of extensions.toml.
type extensionConfig struct {
	// Enabled turns the extension subsystem on.
	Enabled bool `toml:"enabled"`
	// Directory holds one data folder per extension.
	Directory string `toml:"directory"`
	// Disabled lists extensions that are built in but must not be enabled.
	Disabled []string `toml:"disabled"`
}

// readConfig decodes the TOML file at path over def. A missing file is
// created from def.
func readConfig[T any](path string, def T) (T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if data, err = toml.Marshal(def); err != nil {
			return def, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return def, fmt.Errorf("create default config: %w", err)
		}
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("decode config: %w", err)
	}
	return def, nil
}
