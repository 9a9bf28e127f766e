package location

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMoved(t *testing.T) {
	t.Parallel()

	origin := New(Overworld, mgl64.Vec3{0, 64, 0}, 0, 0)
	cases := map[string]struct {
		to   Location
		want bool
	}{
		"same spot":         {to: origin, want: false},
		"rotation only":     {to: New(Overworld, mgl64.Vec3{0, 64, 0}, 90, 45), want: false},
		"exactly threshold": {to: New(Overworld, mgl64.Vec3{0.5, 64, 0}, 0, 0), want: false},
		"beyond threshold":  {to: New(Overworld, mgl64.Vec3{0.51, 64, 0}, 0, 0), want: true},
		"vertical":          {to: New(Overworld, mgl64.Vec3{0, 65, 0}, 0, 0), want: true},
		"other world":       {to: New(Nether, mgl64.Vec3{0, 64, 0}, 0, 0), want: true},
		"case insensitive":  {to: New("  OverWorld ", mgl64.Vec3{0.1, 64, 0}, 0, 0), want: false},
	}
	for name, c := range cases {
		if got := Moved(origin, c.to, 0.5); got != c.want {
			t.Fatalf("%s: Moved() = %v, want %v", name, got, c.want)
		}
	}
}

func TestLocationString(t *testing.T) {
	t.Parallel()

	l := New(End, mgl64.Vec3{1.5, 70, -3}, 0, 0)
	if got, want := l.String(), "end (1.5, 70.0, -3.0)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if (Location{}).Valid() {
		t.Fatalf("zero location reported valid")
	}
}
