// Package rules is the extension asking players to accept the server rules
// before they play. Acceptance is remembered in accepted.toml.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/config"
	"github.com/dm-vev/homes/server/console"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/plugin"
	"github.com/google/uuid"
)

// Name is the name the extension is enabled under.
const Name = "rules"

const version = "1.1.0"

type host interface {
	Logger() *slog.Logger
	DataPath(name string) (string, error)
	Go(fn func(context.Context))
	RegisterCommand(command cmd.Command)
	ExecuteCommand(source cmd.Source, commandLine string) bool
	PlayerByName(name string) (*world.EntityHandle, bool)
}

// Plugin is the rules extension.
type Plugin struct {
	api      host
	log      *slog.Logger
	conf     *config.Provider
	messages *message.Resolver
	ledger   *Ledger
	unsub    []func()
}

// New returns the factory enabling the extension.
func New[S any, C any]() plugin.Factory[S, C] {
	return func(api *plugin.API[S, C]) (plugin.Plugin, error) {
		p, err := setup(api)
		if err != nil {
			return nil, err
		}
		p.unsub = append(p.unsub, api.Events().OnJoin(p.join))
		return p, nil
	}
}

func setup(api host) (*Plugin, error) {
	p := &Plugin{api: api, log: api.Logger()}

	path, err := api.DataPath("config.yml")
	if err != nil {
		return nil, err
	}
	if p.conf, err = config.Load(path, configDefaults(), p.log); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path, err = api.DataPath("accepted.toml"); err != nil {
		return nil, err
	}
	if p.ledger, err = LoadLedger(path); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	p.messages = message.NewResolver(p.conf, DefaultMessages)

	p.registerCommands()
	p.log.Info("Rules enabled.", "rules", len(p.Rules()), "accepted", len(p.ledger.Players()))
	return p, nil
}

func configDefaults() map[string]any {
	defaults := make(map[string]any, len(Defaults)+len(DefaultMessages))
	for k, v := range Defaults {
		defaults[k] = v
	}
	for k, v := range DefaultMessages {
		defaults["messages."+k] = v
	}
	return defaults
}

// join shows the rules to players who have not accepted them yet.
func (p *Plugin) join(pl *player.Player) {
	if !strings.EqualFold(p.conf.String(KeyShowOn, ShowOnJoin), ShowOnJoin) {
		return
	}
	if p.ledger.Accepted(pl.UUID()) || len(p.Rules()) == 0 {
		return
	}
	pl.SendForm(p.Prompt())
}

func (p *Plugin) accept(pl *player.Player) {
	id, name := pl.UUID(), pl.Name()
	if _, err := p.ledger.Accept(id); err != nil {
		p.log.Error("Record rules acceptance.", "player", name, "error", err)
	} else {
		pl.Message(p.messages.Resolve("accepted", nil))
	}
	p.run(p.conf.String(KeyAcceptAction, "none"), id, name, pl.Disconnect)
}

func (p *Plugin) decline(pl *player.Player) {
	p.run(p.conf.String(KeyDeclineAction, "none"), pl.UUID(), pl.Name(), pl.Disconnect)
}

// run performs a configured button action for a player. Commands are run as
// the console outside of the calling transaction.
func (p *Plugin) run(raw string, id uuid.UUID, name string, disconnect func(...any)) {
	action := ParseAction(raw)
	switch action.Type {
	case ActionCommand:
		line := action.Expand(id, name)
		src := console.NewSource(p.log)
		p.api.Go(func(context.Context) {
			if !p.api.ExecuteCommand(src, line) {
				p.log.Warn("Rules action names an unknown command.", "command", line)
			}
		})
	case ActionDisconnect:
		disconnect(message.Format(action.Expand(id, name)))
	}
}

// Accepted reports if the player accepted the rules.
func (p *Plugin) Accepted(id uuid.UUID) bool { return p.ledger.Accepted(id) }

// Name is part of the plugin.Plugin interface.
func (p *Plugin) Name() string { return Name }

// Version is part of the plugin.VersionedPlugin interface.
func (p *Plugin) Version() string { return version }

// Close removes the event handlers of the extension.
func (p *Plugin) Close() error {
	for i := len(p.unsub) - 1; i >= 0; i-- {
		p.unsub[i]()
	}
	p.unsub = nil
	p.log.Info("Rules disabled.")
	return nil
}
