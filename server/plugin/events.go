package plugin

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// subscription is a value registered by the plugin named owner.
type subscription[T any] struct {
	id    uint64
	owner string
	value T
}

// subscriptions is a copy-on-write list. Dispatch reads a snapshot without
// locking, so handlers may subscribe or unsubscribe while an event runs.
type subscriptions[T any] struct {
	mu   sync.Mutex
	ids  uint64
	list atomic.Pointer[[]subscription[T]]
}

func (s *subscriptions[T]) load() []subscription[T] {
	if l := s.list.Load(); l != nil {
		return *l
	}
	return nil
}

func (s *subscriptions[T]) add(owner string, v T) func() {
	s.mu.Lock()
	s.ids++
	id := s.ids
	l := append(slices.Clone(s.load()), subscription[T]{id: id, owner: owner, value: v})
	s.list.Store(&l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.drop(func(sub subscription[T]) bool { return sub.id == id })
		})
	}
}

func (s *subscriptions[T]) drop(match func(subscription[T]) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := slices.DeleteFunc(slices.Clone(s.load()), match)
	s.list.Store(&l)
}

// hub holds the event subscriptions of all plugins.
type hub struct {
	players subscriptions[player.Handler]
	joins   subscriptions[func(*player.Player)]
	// panicked is called with the owner of a subscription that panicked.
	panicked func(owner string, reason any)
}

func (h *hub) clear(owner string) {
	match := func(o string) bool { return o == owner }
	h.players.drop(func(s subscription[player.Handler]) bool { return match(s.owner) })
	h.joins.drop(func(s subscription[func(*player.Player)]) bool { return match(s.owner) })
}

// guard runs fn and reports a panic as a failure of owner.
func (h *hub) guard(owner string, fn func()) {
	defer func() {
		if r := recover(); r != nil && h.panicked != nil {
			h.panicked(owner, r)
		}
	}()
	fn()
}

func (h *hub) joined(p *player.Player) {
	for _, s := range h.joins.load() {
		h.guard(s.owner, func() { s.value(p) })
	}
}

// chain is the player.Handler set on every player. Events plugins may
// subscribe to pass through their handlers first. Everything else goes to the
// wrapped handler directly.
type chain struct {
	player.Handler
	hub *hub
}

func (c *chain) dispatch(ctx *player.Context, fn func(player.Handler)) {
	for _, s := range c.hub.players.load() {
		c.hub.guard(s.owner, func() { fn(s.value) })
		if ctx != nil && ctx.Cancelled() {
			return
		}
	}
	fn(c.Handler)
}

func (c *chain) HandleMove(ctx *player.Context, newPos mgl64.Vec3, newRot cube.Rotation) {
	c.dispatch(ctx, func(h player.Handler) { h.HandleMove(ctx, newPos, newRot) })
}

func (c *chain) HandleTeleport(ctx *player.Context, pos mgl64.Vec3) {
	c.dispatch(ctx, func(h player.Handler) { h.HandleTeleport(ctx, pos) })
}

func (c *chain) HandleChat(ctx *player.Context, message *string) {
	c.dispatch(ctx, func(h player.Handler) { h.HandleChat(ctx, message) })
}

func (c *chain) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	c.dispatch(ctx, func(h player.Handler) { h.HandleHurt(ctx, damage, immune, attackImmunity, src) })
}

func (c *chain) HandleChangeWorld(p *player.Player, before, after *world.World) {
	c.dispatch(nil, func(h player.Handler) { h.HandleChangeWorld(p, before, after) })
}

func (c *chain) HandleDeath(p *player.Player, src world.DamageSource, keepInv *bool) {
	c.dispatch(nil, func(h player.Handler) { h.HandleDeath(p, src, keepInv) })
}

func (c *chain) HandleQuit(p *player.Player) {
	c.dispatch(nil, func(h player.Handler) { h.HandleQuit(p) })
}
