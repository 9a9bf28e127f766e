package teleport

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/tick"
	"github.com/google/uuid"
)

// Options holds the collaborators of a Coordinator. Presenter, Actors and
// Scheduler are required.
type Options struct {
	Config    Config
	Presenter Presenter
	Actors    Actors
	Scheduler Scheduler
	Logger    *slog.Logger
	Metrics   *Metrics
}

// request is the pending teleport of a single actor.
type request struct {
	actor     uuid.UUID
	dest      Destination
	origin    location.Location
	remaining int
	damaged   bool
	task      tick.Handle
}

// Coordinator runs teleport warmups. Every actor has at most one pending
// request; a request counts down once per second, is cancelled when the actor
// moves, takes damage or disconnects, and otherwise ends in a transfer to its
// destination.
//
// Tick callbacks run on the Scheduler. Actors and Presenter are only called
// from the goroutine calling RequestTeleport and from scheduled callbacks.
type Coordinator struct {
	conf    Config
	present Presenter
	actors  Actors
	sched   Scheduler
	log     *slog.Logger
	metrics *Metrics

	mu       sync.Mutex
	requests map[uuid.UUID]*request
}

// New creates a Coordinator using the collaborators in opts.
func New(opts Options) *Coordinator {
	if opts.Presenter == nil || opts.Actors == nil || opts.Scheduler == nil {
		panic("teleport: coordinator requires presenter, actors and scheduler")
	}
	if opts.Config == nil {
		opts.Config = defaultConfig{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator{
		conf:     opts.Config,
		present:  opts.Presenter,
		actors:   opts.Actors,
		sched:    opts.Scheduler,
		log:      opts.Logger.With("subsystem", "teleport"),
		metrics:  opts.Metrics,
		requests: make(map[uuid.UUID]*request),
	}
}

// RequestTeleport starts a warmup for the actor towards dest, replacing any
// request the actor already had. With a warmup of zero or less the actor is
// transferred immediately.
func (c *Coordinator) RequestTeleport(actor uuid.UUID, dest Destination) error {
	if actor == uuid.Nil || !dest.Location.Valid() {
		c.log.Warn("Rejected teleport request.", "actor", actor, "destination", dest.Name, "world", dest.Location.World)
		return fmt.Errorf("%w: actor %v, destination %q", ErrInvalidArgument, actor, dest.Name)
	}
	if !c.actors.Online(actor) {
		c.log.Warn("Teleport requested for offline actor.", "actor", actor)
		return ErrActorUnreachable
	}
	origin, err := c.actors.Location(actor)
	if err != nil {
		c.log.Warn("Read actor location.", "actor", actor, "error", err)
		return fmt.Errorf("%w: %w", ErrActorUnreachable, err)
	}
	c.metrics.incRequested()

	warmup := c.conf.Int(KeyWarmup, DefaultWarmup)
	if warmup <= 0 {
		c.CancelTeleport(actor, ReasonNone)
		c.transfer(actor, dest)
		return nil
	}

	req := &request{actor: actor, dest: dest, origin: origin, remaining: warmup}
	c.mu.Lock()
	prev := c.requests[actor]
	c.requests[actor] = req
	req.task = c.sched.RunRepeating(0, tick.TicksPerSecond, func() { c.tick(req) })
	c.mu.Unlock()

	if prev != nil {
		prev.task.Cancel()
		c.metrics.incCancelled(ReasonNone)
	}
	c.sound(actor, SoundStart)
	c.log.Debug("Teleport warmup started.", "actor", actor, "destination", dest.Name, "warmup", warmup)
	return nil
}

// CancelTeleport cancels the actor's pending request. Unless reason is
// ReasonNone the actor is told why. It reports if a request was cancelled.
func (c *Coordinator) CancelTeleport(actor uuid.UUID, reason Reason) bool {
	c.mu.Lock()
	req, ok := c.requests[actor]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.cancel(req, reason)
}

// Disconnect drops the actor's pending request without feedback. It is called
// when the actor leaves.
func (c *Coordinator) Disconnect(actor uuid.UUID) {
	c.CancelTeleport(actor, ReasonNone)
}

// ReportDamage marks the actor's pending request as damaged. The next tick
// cancels it if damage cancellation is enabled. Without a pending request the
// call does nothing.
func (c *Coordinator) ReportDamage(actor uuid.UUID) {
	c.mu.Lock()
	if req, ok := c.requests[actor]; ok {
		req.damaged = true
	}
	c.mu.Unlock()
}

// Active reports if the actor has a pending request.
func (c *Coordinator) Active(actor uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.requests[actor]
	return ok
}

// Pending returns the number of actors with a pending request.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Close cancels all pending requests silently.
func (c *Coordinator) Close() {
	c.mu.Lock()
	reqs := c.requests
	c.requests = make(map[uuid.UUID]*request)
	c.mu.Unlock()
	for _, req := range reqs {
		req.task.Cancel()
	}
}

// remove deletes req if it is still the actor's registered request and cancels
// its task.
func (c *Coordinator) remove(req *request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requests[req.actor] != req {
		return false
	}
	delete(c.requests, req.actor)
	req.task.Cancel()
	return true
}

func (c *Coordinator) cancel(req *request, reason Reason) bool {
	if !c.remove(req) {
		return false
	}
	c.metrics.incCancelled(reason)
	if reason == ReasonNone {
		return true
	}
	c.effect(req.actor, "message", c.present.Message(req.actor, MsgCancelled+string(reason), nil))
	c.effect(req.actor, "title", c.present.Title(req.actor, Title{
		Key:         MsgCancelledTitle,
		SubtitleKey: MsgCancelledSubtitle + string(reason),
		FadeIn:      250 * time.Millisecond,
		Stay:        2 * time.Second,
		FadeOut:     500 * time.Millisecond,
	}))
	c.sound(req.actor, SoundCancel)
	c.log.Debug("Teleport cancelled.", "actor", req.actor, "reason", string(reason))
	return true
}

func (c *Coordinator) current(req *request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[req.actor] == req
}

// tick performs one countdown step of req. Exactly one of silent removal, move
// cancellation, damage cancellation, transfer or countdown happens per call.
func (c *Coordinator) tick(req *request) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Teleport tick panicked.", "actor", req.actor, "panic", r, "stack", string(debug.Stack()))
			c.remove(req)
		}
	}()
	if !c.current(req) {
		req.task.Cancel()
		return
	}
	if !c.actors.Online(req.actor) {
		c.cancel(req, ReasonNone)
		return
	}
	loc, err := c.actors.Location(req.actor)
	if err != nil {
		c.log.Debug("Actor location unavailable, dropping teleport.", "actor", req.actor, "error", err)
		c.cancel(req, ReasonNone)
		return
	}
	if c.conf.Bool(KeyCancelOnMove, true) && location.Moved(req.origin, loc, c.conf.Float(KeyMoveThreshold, DefaultMoveThreshold)) {
		c.cancel(req, ReasonMove)
		return
	}

	c.mu.Lock()
	damaged := req.damaged
	req.damaged = false
	remaining := req.remaining
	c.mu.Unlock()

	if damaged && c.conf.Bool(KeyCancelOnDamage, true) {
		c.cancel(req, ReasonDamage)
		return
	}
	if remaining <= 0 {
		if c.remove(req) {
			c.transfer(req.actor, req.dest)
		}
		return
	}
	c.effect(req.actor, "title", c.present.Title(req.actor, Title{
		Key:          MsgWarmupTitle,
		SubtitleKey:  MsgWarmupSubtitle,
		Placeholders: map[string]string{"time": strconv.Itoa(remaining)},
		Stay:         1200 * time.Millisecond,
		FadeOut:      200 * time.Millisecond,
	}))
	c.mu.Lock()
	req.remaining--
	c.mu.Unlock()
}

// transfer runs the arrival sequence for the actor. Once started it cannot be
// cancelled.
func (c *Coordinator) transfer(actor uuid.UUID, dest Destination) {
	if !c.conf.Bool(KeyBlackscreen, true) {
		c.arrive(actor, dest, false)
		return
	}
	c.effect(actor, "title", c.present.Title(actor, Title{Key: MsgBlackscreenTitle, Stay: time.Second}))
	delay := c.conf.Int(KeyBlackscreenDelay, DefaultBlackscreenDelay)
	if delay <= 0 {
		c.arrive(actor, dest, true)
		return
	}
	c.sched.RunLater(int64(delay), func() { c.arrive(actor, dest, true) })
}

func (c *Coordinator) arrive(actor uuid.UUID, dest Destination, blackscreen bool) {
	if !c.actors.Online(actor) {
		c.metrics.incFailed()
		c.log.Debug("Actor left before arrival.", "actor", actor, "destination", dest.Name)
		return
	}
	if err := c.actors.Teleport(actor, dest.Location); err != nil {
		c.metrics.incFailed()
		c.log.Warn("Teleport actor.", "actor", actor, "destination", dest.Name, "error", err)
		if blackscreen {
			c.effect(actor, "clear title", c.present.ClearTitle(actor))
		}
		return
	}
	c.metrics.incCompleted()
	c.sound(actor, SoundEnd)
	c.effect(actor, "message", c.present.Message(actor, MsgSuccess, map[string]string{"home_name": dest.Name}))
	if blackscreen {
		c.sched.RunLater(int64(c.conf.Int(KeyBlackscreenLength, DefaultBlackscreenLength)), func() {
			c.effect(actor, "clear title", c.present.ClearTitle(actor))
		})
	}
	c.log.Debug("Teleport completed.", "actor", actor, "destination", dest.Name, "location", dest.Location.String())
}

func (c *Coordinator) sound(actor uuid.UUID, key string) {
	if !c.conf.Bool(KeySoundsEnabled, true) {
		return
	}
	name := c.conf.String(KeySoundPrefix+key, "")
	if name == "" {
		return
	}
	c.effect(actor, "sound", c.present.Sound(actor, name))
}

func (c *Coordinator) effect(actor uuid.UUID, kind string, err error) {
	if err != nil {
		c.log.Debug("Teleport feedback failed.", "actor", actor, "effect", kind, "error", err)
	}
}
