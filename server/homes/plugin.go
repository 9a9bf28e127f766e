// Package homes is the extension letting players save named locations and
// return to them through menus and commands. Teleports go through a warmup run
// by a teleport.Coordinator.
package homes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/dm-vev/homes/server/config"
	"github.com/dm-vev/homes/server/dfhost"
	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/home/sqlstore"
	"github.com/dm-vev/homes/server/home/yamlstore"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/plugin"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/google/uuid"
)

// Name is the name the extension is enabled under.
const Name = "homes"

const version = "1.4.0"

// saveTimeout bounds the writes done when a player quits and when the
// extension closes.
const saveTimeout = 10 * time.Second

// host is the part of the extension API the plugin uses.
type host interface {
	dfhost.Server
	Logger() *slog.Logger
	DataPath(name string) (string, error)
	EnsureDataSubdir(name string) (string, error)
	Go(fn func(context.Context))
	RegisterCommand(command cmd.Command)
}

// Plugin is the homes extension.
type Plugin struct {
	api      host
	log      *slog.Logger
	conf     *config.Provider
	messages *message.Resolver
	store    home.Store
	homes    *home.Manager
	coord    *teleport.Coordinator
	metrics  *teleport.Metrics
	svc      *Service
	menus    *menus
	unsub    []func()
	closed   atomic.Bool

	// unloadMu guards closing against new unloads being added to unloads.
	unloadMu sync.Mutex
	closing  bool
	unloads  sync.WaitGroup
}

// New returns the factory enabling the extension. Teleport warmups and
// deferred home actions run on sched.
func New[S any, C any](sched teleport.Scheduler) plugin.Factory[S, C] {
	return func(api *plugin.API[S, C]) (plugin.Plugin, error) {
		p, err := setup(api, sched)
		if err != nil {
			return nil, err
		}
		events := api.Events()
		p.unsub = append(p.unsub,
			events.OnPlayer(handler{plugin: p}),
			events.OnJoin(p.preload),
		)
		return p, nil
	}
}

func setup(api host, sched teleport.Scheduler) (*Plugin, error) {
	p := &Plugin{api: api, log: api.Logger()}

	path, err := api.DataPath("config.yml")
	if err != nil {
		return nil, err
	}
	if p.conf, err = config.Load(path, configDefaults(), p.log); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p.store, err = p.openStore(); err != nil {
		return nil, err
	}

	p.messages = message.NewResolver(p.conf, DefaultMessages)
	p.homes = home.NewManager(p.store, p.conf, p.log)
	presenter := dfhost.NewPresenter(api, p.messages)
	p.metrics = teleport.NewMetrics()
	p.coord = teleport.New(teleport.Options{
		Config:    p.conf,
		Presenter: presenter,
		Actors:    dfhost.NewActors(api),
		Scheduler: sched,
		Logger:    p.log,
		Metrics:   p.metrics,
	})
	p.svc = NewService(p.homes, p.coord, sched, presenter, p.conf, p.log)
	p.menus = &menus{svc: p.svc, messages: p.messages, conf: p.conf}

	p.registerCommands()
	p.startAutoSave()
	if p.conf.Bool(KeyWatchConfig, true) {
		api.Go(func(ctx context.Context) {
			if err := p.conf.Watch(ctx, nil); err != nil {
				p.log.Warn("Watch configuration.", "error", err)
			}
		})
	}
	p.log.Info("Homes enabled.", "storage", p.conf.String(KeyDataFormat, FormatYAML))
	return p, nil
}

// configDefaults merges Defaults and DefaultMessages into the flat key set
// config.yml is written from.
func configDefaults() map[string]any {
	defaults := make(map[string]any, len(Defaults)+len(DefaultMessages))
	for k, v := range Defaults {
		defaults[k] = v
	}
	for k, v := range DefaultMessages {
		if !strings.Contains(k, ".") {
			k = "messages." + k
		}
		defaults[k] = v
	}
	return defaults
}

func (p *Plugin) openStore() (home.Store, error) {
	switch format := strings.ToLower(p.conf.String(KeyDataFormat, FormatYAML)); format {
	case FormatYAML:
		dir, err := p.api.EnsureDataSubdir("homes")
		if err != nil {
			return nil, err
		}
		return yamlstore.Open(dir)
	case FormatSQLite:
		path, err := p.api.DataPath("homes.db")
		if err != nil {
			return nil, err
		}
		return sqlstore.Open(path)
	default:
		return nil, fmt.Errorf("unknown %s %q", KeyDataFormat, format)
	}
}

// startAutoSave writes changed homes every data.auto-save-interval minutes.
// The interval is reread after every save; zero or less disables saving until
// it is changed.
func (p *Plugin) startAutoSave() {
	p.api.Go(func(ctx context.Context) {
		for {
			minutes := p.conf.Int(KeyAutoSave, defaultAutoSave)
			wait := time.Duration(minutes) * time.Minute
			if minutes <= 0 {
				wait = time.Minute
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if minutes <= 0 {
				continue
			}
			if err := p.homes.SaveDirty(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.log.Error("Auto-save homes.", "error", err)
			}
		}
	})
}

func (p *Plugin) preload(pl *player.Player) {
	id := pl.UUID()
	p.api.Go(func(ctx context.Context) {
		if err := p.homes.Preload(ctx, id); err != nil {
			p.log.Error("Load homes on join.", "player", id, "error", err)
		}
	})
}

// Name is part of the plugin.Plugin interface.
func (p *Plugin) Name() string { return Name }

// Version is part of the plugin.VersionedPlugin interface.
func (p *Plugin) Version() string { return version }

// Service returns the home operations of the extension.
func (p *Plugin) Service() *Service { return p.svc }

// Metrics returns the teleport counters of the extension.
func (p *Plugin) Metrics() *teleport.Metrics { return p.metrics }

// unload writes the homes of a player who quit and drops them from memory. The
// write outlives the extension context, and Close waits for it. Once Close
// started, the homes are left for its final save instead.
func (p *Plugin) unload(id uuid.UUID, name string) {
	p.unloadMu.Lock()
	if p.closing {
		p.unloadMu.Unlock()
		return
	}
	p.unloads.Add(1)
	p.unloadMu.Unlock()

	p.api.Go(func(ctx context.Context) {
		defer p.unloads.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if err := p.homes.Unload(ctx, id); err != nil {
			p.log.Error("Save homes on quit.", "player", name, "error", err)
		}
	})
}

// Close cancels pending teleports, waits for the saves of players who quit and
// writes every home still in memory.
func (p *Plugin) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	for i := len(p.unsub) - 1; i >= 0; i-- {
		p.unsub[i]()
	}
	p.unsub = nil
	p.coord.Close()

	p.unloadMu.Lock()
	p.closing = true
	p.unloadMu.Unlock()
	p.unloads.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	err := p.homes.SaveAll(ctx)
	if cerr := p.store.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
	}
	p.log.Info("Homes disabled.")
	return err
}
