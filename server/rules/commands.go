package rules

import (
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/message"
	"github.com/google/uuid"
)

func (p *Plugin) registerCommands() {
	p.api.RegisterCommand(cmd.New("rules", "Show the server rules.", nil,
		showCommand{plugin: p},
		resetCommand{plugin: p},
		reloadCommand{plugin: p},
	))
}

// showCommand shows the rules. Players get a menu, the console a list.
type showCommand struct {
	plugin *Plugin
}

func (c showCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	if p, ok := src.(*player.Player); ok {
		p.SendForm(c.plugin.View())
		return
	}
	lines := c.plugin.Lines()
	if len(lines) == 0 {
		o.Print(c.plugin.messages.Resolve("no-rules", nil))
		return
	}
	for _, line := range lines {
		o.Print(line)
	}
}

// resetCommand makes a player accept the rules again.
type resetCommand struct {
	plugin *Plugin
	Reset  cmd.SubCommand `cmd:"reset"`
	Player string         `cmd:"player"`
}

func (c resetCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	placeholders := message.Placeholders{"player": c.Player}
	id, ok := c.plugin.target(c.Player)
	if !ok {
		o.Error(c.plugin.messages.Resolve("player-not-found", placeholders))
		return
	}
	reset, err := c.plugin.ledger.Reset(id)
	switch {
	case err != nil:
		c.plugin.log.Error("Reset rules acceptance.", "player", id, "error", err)
		o.Error(err)
	case reset:
		o.Print(c.plugin.messages.Resolve("reset", placeholders))
	default:
		o.Print(c.plugin.messages.Resolve("reset-unknown", placeholders))
	}
}

func (resetCommand) Allow(src cmd.Source) bool { return fromConsole(src) }

// reloadCommand rereads config.yml and accepted.toml.
type reloadCommand struct {
	plugin *Plugin
	Reload cmd.SubCommand `cmd:"reload"`
}

func (c reloadCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if err := c.plugin.conf.Reload(); err != nil {
		o.Error(err)
		return
	}
	if err := c.plugin.ledger.Reload(); err != nil {
		o.Error(err)
		return
	}
	o.Print(c.plugin.messages.Resolve("reloaded", nil))
}

func (reloadCommand) Allow(src cmd.Source) bool { return fromConsole(src) }

// target resolves a UUID or the name of an online player.
func (p *Plugin) target(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if id, err := uuid.Parse(s); err == nil {
		return id, true
	}
	if s == "" {
		return uuid.Nil, false
	}
	h, ok := p.api.PlayerByName(s)
	if !ok {
		return uuid.Nil, false
	}
	return h.UUID(), true
}

func fromConsole(src cmd.Source) bool {
	_, ok := src.(*player.Player)
	return !ok
}

var (
	_ cmd.Runnable = showCommand{}
	_ cmd.Allower  = resetCommand{}
	_ cmd.Allower  = reloadCommand{}
)
