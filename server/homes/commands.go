package homes

import (
	"context"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/message"
	"github.com/google/uuid"
)

func (p *Plugin) registerCommands() {
	p.api.RegisterCommand(cmd.New("home", "Open your homes.", []string{"homes", "sethome", "delhome", "dom", "domy", "ustawdom"},
		homeCommand{plugin: p},
	))
	p.api.RegisterCommand(cmd.New("dmhomes", "Manage your homes.", []string{"dmh"},
		listCommand{plugin: p},
		infoCommand{plugin: p},
		cancelCommand{plugin: p},
		reloadCommand{plugin: p},
		statsCommand{plugin: p},
		helpCommand{plugin: p},
		usageCommand{plugin: p},
	))
}

// homeCommand opens the home menu, or starts a teleport to the home named.
type homeCommand struct {
	plugin *Plugin
	Home   cmd.Optional[string] `cmd:"home"`
}

func (c homeCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := c.plugin.player(src, o, "home")
	if !ok {
		return
	}
	c.plugin.withHomes(p, o, func(p *player.Player, reply func(...Notice)) {
		if name, ok := c.Home.Load(); ok {
			reply(c.plugin.svc.Teleport(p.UUID(), name))
			return
		}
		p.SendForm(c.plugin.menus.Main(p.UUID()))
	})
}

// listCommand lists the homes of the player running it.
type listCommand struct {
	plugin *Plugin
	List   cmd.SubCommand `cmd:"list"`
}

func (c listCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := c.plugin.player(src, o, "dmhomes list")
	if !ok {
		return
	}
	c.plugin.withHomes(p, o, func(p *player.Player, reply func(...Notice)) {
		reply(c.plugin.svc.List(p.UUID())...)
	})
}

// infoCommand describes a single home.
type infoCommand struct {
	plugin *Plugin
	Info   cmd.SubCommand `cmd:"info"`
	Home   string         `cmd:"home"`
}

func (c infoCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := c.plugin.player(src, o, "dmhomes info")
	if !ok {
		return
	}
	c.plugin.withHomes(p, o, func(p *player.Player, reply func(...Notice)) {
		reply(c.plugin.svc.Info(p.UUID(), c.Home)...)
	})
}

// cancelCommand cancels the pending teleport of the player running it.
type cancelCommand struct {
	plugin *Plugin
	Cancel cmd.SubCommand `cmd:"cancel"`
}

func (c cancelCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := c.plugin.player(src, o, "dmhomes cancel")
	if !ok {
		return
	}
	c.plugin.print(o, c.plugin.svc.Cancel(p.UUID()))
}

// reloadCommand rereads config.yml.
type reloadCommand struct {
	plugin *Plugin
	Reload cmd.SubCommand `cmd:"reload"`
}

func (c reloadCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if c.plugin.closed.Load() {
		c.plugin.print(o, notice("plugin-disabled", nil))
		return
	}
	if err := c.plugin.conf.Reload(); err != nil {
		c.plugin.log.Error("Reload configuration.", "error", err)
		o.Error(c.plugin.messages.Resolve("error-generic", message.Placeholders{"error": err.Error()}))
		return
	}
	c.plugin.print(o, notice("plugin-reloaded", nil))
}

// Allow only lets the console and configured administrators reload.
func (c reloadCommand) Allow(src cmd.Source) bool {
	p, ok := src.(*player.Player)
	if !ok {
		return true
	}
	return c.plugin.svc.IsAdmin(p.UUID(), p.Name())
}

// statsCommand prints the teleport counters.
type statsCommand struct {
	plugin *Plugin
	Stats  cmd.SubCommand `cmd:"stats"`
}

func (c statsCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	c.plugin.print(o, notice("teleport-stats", StatsPlaceholders(c.plugin.metrics.Snapshot())))
}

func (c statsCommand) Allow(src cmd.Source) bool {
	return reloadCommand{plugin: c.plugin}.Allow(src)
}

// helpCommand lists the subcommands available to the source.
type helpCommand struct {
	plugin *Plugin
	Help   cmd.SubCommand `cmd:"help"`
}

func (c helpCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	c.plugin.help(src, o)
}

// usageCommand prints the help when /dmhomes is run without arguments.
type usageCommand struct {
	plugin *Plugin
}

func (c usageCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	c.plugin.help(src, o)
}

func (p *Plugin) help(src cmd.Source, o *cmd.Output) {
	lines := []Notice{notice("help-header", nil), notice("help-list", nil), notice("help-info", nil), notice("help-cancel", nil), notice("help-help", nil)}
	if (reloadCommand{plugin: p}).Allow(src) {
		lines = append(lines, notice("help-reload", nil), notice("help-stats", nil))
	}
	p.print(o, lines...)
}

// player returns the player running a command. Other sources and commands run
// while the extension is closed get an error instead.
func (p *Plugin) player(src cmd.Source, o *cmd.Output, command string) (*player.Player, bool) {
	if p.closed.Load() {
		o.Error(p.messages.Resolve("plugin-disabled", nil))
		return nil, false
	}
	pl, ok := src.(*player.Player)
	if !ok {
		o.Error(p.messages.Resolve("error-player-only", message.Placeholders{"command": command}))
		return nil, false
	}
	return pl, true
}

// withHomes runs fn once the homes of pl are in memory. Loaded homes are
// handled right away and fn replies to o. Otherwise the homes are read on
// another goroutine and fn runs later in the player's transaction, replying
// through chat.
func (p *Plugin) withHomes(pl *player.Player, o *cmd.Output, fn func(pl *player.Player, reply func(...Notice))) {
	handle := pl.H()
	loaded := p.whenLoaded(pl.UUID(), func(err error) {
		handle.ExecWorld(func(_ *world.Tx, e world.Entity) {
			pl, ok := e.(*player.Player)
			if !ok {
				return
			}
			reply := func(notices ...Notice) {
				for _, n := range notices {
					p.menus.send(pl, n)
				}
			}
			if err != nil {
				reply(notice("error-generic", message.Placeholders{"error": err.Error()}))
				return
			}
			fn(pl, reply)
		})
	})
	if loaded {
		fn(pl, func(notices ...Notice) { p.print(o, notices...) })
	}
}

// whenLoaded reports if the homes of id are in memory. If they are not, they
// are read on another goroutine and then is called with the result, so that
// a world transaction never waits on the store.
func (p *Plugin) whenLoaded(id uuid.UUID, then func(err error)) bool {
	if p.homes.Loaded(id) {
		return true
	}
	p.api.Go(func(ctx context.Context) {
		err := p.homes.Preload(ctx, id)
		if err != nil {
			p.log.Error("Load homes.", "player", id, "error", err)
		}
		then(err)
	})
	return false
}

func (p *Plugin) print(o *cmd.Output, notices ...Notice) {
	for _, n := range notices {
		if !n.Empty() {
			o.Print(p.messages.Resolve(n.Key, n.Placeholders))
		}
	}
}

var (
	_ cmd.Runnable = homeCommand{}
	_ cmd.Runnable = listCommand{}
	_ cmd.Runnable = infoCommand{}
	_ cmd.Runnable = cancelCommand{}
	_ cmd.Allower  = reloadCommand{}
	_ cmd.Runnable = helpCommand{}
	_ cmd.Runnable = usageCommand{}
)
