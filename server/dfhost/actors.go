package dfhost

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Server is the part of a Dragonfly server the actors and presenter use. It
// is satisfied by *server.Server and *Host.
type Server interface {
	Player(id uuid.UUID) (*world.EntityHandle, bool)
	World() *world.World
	Nether() *world.World
	End() *world.World
}

// Actors implements teleport.Actors for online players. Its methods open the
// player's world transaction and must not be called from within one.
type Actors struct {
	srv Server
}

// NewActors returns Actors backed by srv.
func NewActors(srv Server) *Actors {
	return &Actors{srv: srv}
}

// Online reports if the player is connected.
func (a *Actors) Online(id uuid.UUID) bool {
	_, ok := a.srv.Player(id)
	return ok
}

// Location returns the player's current location.
func (a *Actors) Location(id uuid.UUID) (location.Location, error) {
	var loc location.Location
	err := a.exec(id, func(tx *world.Tx, p *player.Player) {
		loc = LocationOf(tx, p)
	})
	return loc, err
}

// Teleport moves the player to loc, changing worlds when needed.
func (a *Actors) Teleport(id uuid.UUID, loc location.Location) error {
	target := a.WorldByName(loc.World)
	if target == nil {
		return fmt.Errorf("unknown world %q", loc.World)
	}
	return a.exec(id, func(tx *world.Tx, p *player.Player) {
		if tx.World() == target {
			place(p, loc)
			return
		}
		handle := tx.RemoveEntity(p)
		if handle == nil {
			return
		}
		target.Exec(func(destTx *world.Tx) {
			if moved, ok := destTx.AddEntity(handle).(*player.Player); ok {
				place(moved, loc)
			}
		})
	})
}

// WorldByName returns the world of the server called name, or nil.
func (a *Actors) WorldByName(name string) *world.World {
	switch location.NormaliseWorld(name) {
	case location.Overworld:
		return a.srv.World()
	case location.Nether:
		return a.srv.Nether()
	case location.End:
		return a.srv.End()
	}
	return nil
}

func (a *Actors) exec(id uuid.UUID, fn func(tx *world.Tx, p *player.Player)) error {
	handle, ok := a.srv.Player(id)
	if !ok {
		return teleport.ErrActorUnreachable
	}
	found := false
	opened := handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		if p, ok := e.(*player.Player); ok {
			found = true
			fn(tx, p)
		}
	})
	if !opened || !found {
		return teleport.ErrActorUnreachable
	}
	return nil
}

// LocationOf returns the location of p in the world of tx.
func LocationOf(tx *world.Tx, p *player.Player) location.Location {
	rot := p.Rotation()
	return location.New(DimensionName(tx.World().Dimension()), p.Position(), rot.Yaw(), rot.Pitch())
}

// DimensionName returns the world name used in locations for dim.
func DimensionName(dim world.Dimension) string {
	switch dim {
	case world.Nether:
		return location.Nether
	case world.End:
		return location.End
	}
	return location.Overworld
}

func place(p *player.Player, loc location.Location) {
	p.Teleport(loc.Pos)
	rot := p.Rotation()
	p.Move(mgl64.Vec3{}, loc.Yaw-rot.Yaw(), loc.Pitch-rot.Pitch())
}
