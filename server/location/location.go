package location

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// World names recognised by the host. They match the dimensions a Dragonfly
// server exposes and are the values persisted with homes.
const (
	Overworld = "overworld"
	Nether    = "nether"
	End       = "end"
)

// Location is a position in one of the server's worlds together with a view
// rotation.
type Location struct {
	World string
	Pos   mgl64.Vec3
	Yaw   float64
	Pitch float64
}

// New returns a Location in the world passed at the position and rotation.
func New(world string, pos mgl64.Vec3, yaw, pitch float64) Location {
	return Location{World: NormaliseWorld(world), Pos: pos, Yaw: yaw, Pitch: pitch}
}

// Valid reports if the location names a world.
func (l Location) Valid() bool {
	return l.World != ""
}

// Distance returns the Euclidean distance between the positions of l and o. The
// world of either location is not considered.
func (l Location) Distance(o Location) float64 {
	return l.Pos.Sub(o.Pos).Len()
}

// String formats the location as "world (x, y, z)" with one decimal.
func (l Location) String() string {
	return fmt.Sprintf("%s (%.1f, %.1f, %.1f)", l.World, l.Pos[0], l.Pos[1], l.Pos[2])
}

// Moved reports if an actor that stood at from and now stands at to should be
// considered to have moved. Changing worlds always counts as movement, otherwise
// the distance must be strictly greater than threshold.
func Moved(from, to Location, threshold float64) bool {
	if from.World != to.World {
		return true
	}
	return from.Distance(to) > threshold
}

// NormaliseWorld lower-cases and trims a world name.
func NormaliseWorld(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
