package dfhost

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/sound"
	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type emptyServer struct{}

func (emptyServer) Player(uuid.UUID) (*world.EntityHandle, bool) { return nil, false }
func (emptyServer) World() *world.World                          { return nil }
func (emptyServer) Nether() *world.World                         { return nil }
func (emptyServer) End() *world.World                            { return nil }

type mapSource map[string]string

func (m mapSource) String(key string, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func TestSplitCommandLine(t *testing.T) {
	t.Parallel()

	cases := map[string][2]string{
		"/home":                      {"home", ""},
		"DMHomes info  base":         {"dmhomes", "info  base"},
		"  /kick Steve  griefing   ": {"kick", "Steve  griefing"},
		"":                           {"", ""},
	}
	for line, want := range cases {
		name, args := SplitCommandLine(line)
		if name != want[0] || args != want[1] {
			t.Fatalf("SplitCommandLine(%q) = (%q, %q), want (%q, %q)", line, name, args, want[0], want[1])
		}
	}
}

func TestSoundByName(t *testing.T) {
	t.Parallel()

	cases := map[string]world.Sound{
		"teleport":                 sound.Teleport{},
		"ENTITY_ENDERMAN_TELEPORT": sound.Teleport{},
		"entity.player.levelup":    sound.LevelUp{},
		"Level-Up":                 sound.LevelUp{},
		"ui.button.click":          sound.Click{},
	}
	for name, want := range cases {
		got, ok := SoundByName(name)
		if !ok || got != want {
			t.Fatalf("SoundByName(%q) = %T, %v", name, got, ok)
		}
	}
	if _, ok := SoundByName("no_such_sound"); ok {
		t.Fatalf("unknown sound resolved")
	}
}

func TestDimensionName(t *testing.T) {
	t.Parallel()

	cases := map[string]world.Dimension{
		location.Overworld: world.Overworld,
		location.Nether:    world.Nether,
		location.End:       world.End,
	}
	for want, dim := range cases {
		if got := DimensionName(dim); got != want {
			t.Fatalf("DimensionName(%v) = %q, want %q", dim, got, want)
		}
	}
}

func TestOfflineActor(t *testing.T) {
	t.Parallel()

	a := NewActors(emptyServer{})
	id := uuid.New()
	if a.Online(id) {
		t.Fatalf("empty server reports player online")
	}
	if _, err := a.Location(id); !errors.Is(err, teleport.ErrActorUnreachable) {
		t.Fatalf("Location error = %v", err)
	}
	if err := a.Teleport(id, location.New("narnia", mgl64.Vec3{}, 0, 0)); err == nil {
		t.Fatalf("teleport to unknown world succeeded")
	}
}

func TestPresenterOffline(t *testing.T) {
	t.Parallel()

	pr := NewPresenter(emptyServer{}, message.NewResolver(mapSource{}, nil))
	id := uuid.New()
	checks := map[string]error{
		"message": pr.Message(id, "teleport-success", nil),
		"title":   pr.Title(id, teleport.Title{Key: teleport.MsgWarmupTitle}),
		"clear":   pr.ClearTitle(id),
		"sound":   pr.Sound(id, "teleport"),
		"unknown": pr.Sound(id, "nope"),
	}
	for name, err := range checks {
		if !errors.Is(err, teleport.ErrEffect) {
			t.Fatalf("%s: error = %v, want ErrEffect", name, err)
		}
	}
}

func TestBuildTitle(t *testing.T) {
	t.Parallel()

	r := message.NewResolver(mapSource{
		"teleportation.messages.warmup-title":    "Teleporting",
		"teleportation.messages.warmup-subtitle": "in {time}s",
	}, nil)
	tt := BuildTitle(r, teleport.Title{
		Key:          teleport.MsgWarmupTitle,
		SubtitleKey:  teleport.MsgWarmupSubtitle,
		Placeholders: map[string]string{"time": "3"},
		Stay:         1200 * time.Millisecond,
		FadeOut:      200 * time.Millisecond,
	})
	if !strings.Contains(tt.Text(), "Teleporting") || !strings.Contains(tt.Subtitle(), "in 3s") {
		t.Fatalf("title = %q / %q", tt.Text(), tt.Subtitle())
	}
	if tt.Duration() != 1200*time.Millisecond || tt.FadeOutDuration() != 200*time.Millisecond || tt.FadeInDuration() != 0 {
		t.Fatalf("unexpected timings %v %v %v", tt.FadeInDuration(), tt.Duration(), tt.FadeOutDuration())
	}
}
