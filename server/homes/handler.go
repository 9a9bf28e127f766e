package homes

import (
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/teleport"
)

// handler feeds player events into the teleport coordinator and home cache.
type handler struct {
	player.NopHandler
	plugin *Plugin
}

func (h handler) HandleHurt(ctx *player.Context, _ *float64, immune bool, _ *time.Duration, _ world.DamageSource) {
	if ctx.Cancelled() || immune {
		return
	}
	h.plugin.coord.ReportDamage(ctx.Val().UUID())
}

func (h handler) HandleDeath(p *player.Player, _ world.DamageSource, _ *bool) {
	h.plugin.coord.CancelTeleport(p.UUID(), teleport.ReasonNone)
}

func (h handler) HandleQuit(p *player.Player) {
	id, name := p.UUID(), p.Name()
	h.plugin.coord.Disconnect(id)
	h.plugin.unload(id, name)
}
