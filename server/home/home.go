package home

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dm-vev/homes/server/location"
	"github.com/google/uuid"
)

var (
	// ErrInvalidName is returned when a home name does not match the configured
	// pattern.
	ErrInvalidName = errors.New("invalid home name")
	// ErrExists is returned when the owner already has a home with the name.
	ErrExists = errors.New("home already exists")
	// ErrLimitReached is returned when the owner has no home slots left.
	ErrLimitReached = errors.New("home limit reached")
	// ErrWorldBlacklisted is returned when homes may not be set in the world.
	ErrWorldBlacklisted = errors.New("homes are disabled in this world")
	// ErrNotFound is returned when the owner has no home with the name.
	ErrNotFound = errors.New("home not found")
)

// Unlimited is the home limit that allows any number of homes.
const Unlimited = -1

// Home is a named location saved by a player.
type Home struct {
	Name      string
	Location  location.Location
	Icon      string
	CreatedAt time.Time
}

// Key returns the case-insensitive lookup key of the home.
func (h Home) Key() string {
	return Key(h.Name)
}

// Key normalises a home name for lookups.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Store persists the homes of players.
type Store interface {
	// Load returns the homes saved for owner. Unknown owners have no homes.
	Load(ctx context.Context, owner uuid.UUID) ([]Home, error)
	// Save replaces the homes saved for owner.
	Save(ctx context.Context, owner uuid.UUID, homes []Home) error
	// Owners returns every owner with at least one saved home.
	Owners(ctx context.Context) ([]uuid.UUID, error)
	// Close releases the store.
	Close() error
}
