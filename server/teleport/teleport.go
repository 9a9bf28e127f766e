package teleport

import (
	"errors"
	"time"

	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/tick"
	"github.com/google/uuid"
)

var (
	// ErrInvalidArgument is returned when a request names no actor or a
	// destination without a world.
	ErrInvalidArgument = errors.New("invalid teleport argument")
	// ErrActorUnreachable is returned when the actor is not online or its
	// location cannot be read.
	ErrActorUnreachable = errors.New("actor unreachable")
	// ErrEffect is wrapped by Presenter implementations when feedback could not
	// be delivered. Such errors are logged and never stop a teleport.
	ErrEffect = errors.New("teleport effect failed")
)

// Configuration keys read by the Coordinator.
const (
	KeyWarmup            = "teleportation.warmup-time"
	KeyCancelOnMove      = "teleportation.cancel-on-move"
	KeyCancelOnDamage    = "teleportation.cancel-on-damage"
	KeyMoveThreshold     = "teleportation.move-threshold"
	KeyBlackscreen       = "teleportation.blackscreen-effect"
	KeyBlackscreenDelay  = "teleportation.blackscreen-delay"
	KeyBlackscreenLength = "teleportation.blackscreen-duration"
	KeySoundsEnabled     = "teleportation.sounds.enabled"
	KeySoundPrefix       = "teleportation.sounds."
)

// Message keys resolved by the Presenter.
const (
	MsgWarmupTitle       = "teleportation.messages.warmup-title"
	MsgWarmupSubtitle    = "teleportation.messages.warmup-subtitle"
	MsgBlackscreenTitle  = "teleportation.messages.blackscreen-title"
	MsgCancelledTitle    = "teleportation.messages.teleport-cancelled-title"
	MsgCancelledSubtitle = "teleportation.messages.teleport-cancelled-subtitle-"
	MsgCancelled         = "teleportation.teleport-cancelled-"
	MsgSuccess           = "teleport-success"
)

// Sound keys, looked up below KeySoundPrefix.
const (
	SoundStart  = "teleport-start"
	SoundEnd    = "teleport-end"
	SoundCancel = "teleport-cancel"
)

// Defaults used when the Config has no value for a key.
const (
	DefaultWarmup            = 5
	DefaultMoveThreshold     = 0.5
	DefaultBlackscreenDelay  = 95
	DefaultBlackscreenLength = 50
)

// Reason explains why a pending teleport was cancelled. ReasonNone cancels
// without telling the actor.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonMove       Reason = "move"
	ReasonDamage     Reason = "damage"
	ReasonDisconnect Reason = "disconnect"
	ReasonManual     Reason = "manual"
)

// Destination is where a teleport ends, together with the name shown to the
// actor on arrival.
type Destination struct {
	Name     string
	Location location.Location
}

// Title describes a title shown on the actor's screen. Key and SubtitleKey are
// message keys, both resolved with Placeholders.
type Title struct {
	Key          string
	SubtitleKey  string
	Placeholders map[string]string
	FadeIn       time.Duration
	Stay         time.Duration
	FadeOut      time.Duration
}

// Config provides typed configuration lookups. Each lookup returns def when the
// key is not set.
type Config interface {
	Int(key string, def int) int
	Bool(key string, def bool) bool
	Float(key string, def float64) float64
	String(key string, def string) string
}

// Presenter delivers feedback to actors. Errors are treated as non-fatal.
type Presenter interface {
	Message(id uuid.UUID, key string, placeholders map[string]string) error
	Title(id uuid.UUID, t Title) error
	ClearTitle(id uuid.UUID) error
	Sound(id uuid.UUID, sound string) error
}

// Actors gives access to the actors that can be teleported.
type Actors interface {
	// Online reports if the actor is connected.
	Online(id uuid.UUID) bool
	// Location returns the actor's current location.
	Location(id uuid.UUID) (location.Location, error)
	// Teleport moves the actor to the location passed.
	Teleport(id uuid.UUID, loc location.Location) error
}

// Scheduler runs delayed and repeating work. It is satisfied by *tick.Scheduler.
type Scheduler interface {
	RunLater(delay int64, fn func()) tick.Handle
	RunRepeating(delay, period int64, fn func()) tick.Handle
}

type defaultConfig struct{}

func (defaultConfig) Int(_ string, def int) int           { return def }
func (defaultConfig) Bool(_ string, def bool) bool        { return def }
func (defaultConfig) Float(_ string, def float64) float64 { return def }
func (defaultConfig) String(_ string, def string) string  { return def }
