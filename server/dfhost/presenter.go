package dfhost

import (
	"fmt"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/title"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/google/uuid"
)

// Presenter implements teleport.Presenter by resolving messages and sending
// them to online players.
type Presenter struct {
	srv      Server
	messages *message.Resolver
}

// NewPresenter returns a Presenter sending messages resolved by messages.
func NewPresenter(srv Server, messages *message.Resolver) *Presenter {
	return &Presenter{srv: srv, messages: messages}
}

func (pr *Presenter) Message(id uuid.UUID, key string, placeholders map[string]string) error {
	text := pr.messages.Resolve(key, placeholders)
	return pr.with(id, func(p *player.Player) {
		p.Message(text)
	})
}

func (pr *Presenter) Title(id uuid.UUID, t teleport.Title) error {
	tt := BuildTitle(pr.messages, t)
	return pr.with(id, func(p *player.Player) {
		p.SendTitle(tt)
	})
}

// ClearTitle replaces the title on screen with an empty one that fades out
// immediately.
func (pr *Presenter) ClearTitle(id uuid.UUID) error {
	return pr.with(id, func(p *player.Player) {
		p.SendTitle(title.New(" ").WithFadeInDuration(0).WithDuration(time.Millisecond).WithFadeOutDuration(0))
	})
}

func (pr *Presenter) Sound(id uuid.UUID, name string) error {
	s, ok := SoundByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown sound %q", teleport.ErrEffect, name)
	}
	return pr.with(id, func(p *player.Player) {
		p.PlaySound(s)
	})
}

func (pr *Presenter) with(id uuid.UUID, fn func(p *player.Player)) error {
	handle, ok := pr.srv.Player(id)
	if !ok {
		return fmt.Errorf("%w: player %v offline", teleport.ErrEffect, id)
	}
	delivered := false
	handle.ExecWorld(func(_ *world.Tx, e world.Entity) {
		if p, ok := e.(*player.Player); ok {
			fn(p)
			delivered = true
		}
	})
	if !delivered {
		return fmt.Errorf("%w: player %v not in a world", teleport.ErrEffect, id)
	}
	return nil
}

// BuildTitle resolves the keys of t into a title ready to be sent.
func BuildTitle(messages *message.Resolver, t teleport.Title) title.Title {
	tt := title.New(messages.Resolve(t.Key, t.Placeholders))
	if t.SubtitleKey != "" {
		tt = tt.WithSubtitle(messages.Resolve(t.SubtitleKey, t.Placeholders))
	}
	return tt.WithFadeInDuration(t.FadeIn).WithDuration(t.Stay).WithFadeOutDuration(t.FadeOut)
}

var _ teleport.Presenter = (*Presenter)(nil)
