package home

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dm-vev/homes/server/location"
	"github.com/google/uuid"
)

// Configuration keys read by the Manager.
const (
	KeyNamePattern    = "homes.name-regex"
	KeyDefaultLimit   = "homes.max-homes-default"
	KeyLimits         = "homes.limits"
	KeyWorldBlacklist = "homes.world-blacklist"
	KeyDefaultIcon    = "homes.default-icon"
)

// Defaults used when the Config has no value for a key.
const (
	DefaultNamePattern = `^[a-zA-Z0-9_]{1,16}$`
	DefaultLimit       = 3
	DefaultIcon        = "bed"
)

// Config provides the settings the Manager reads on every operation, so a
// reloaded configuration applies immediately.
type Config interface {
	Int(key string, def int) int
	String(key string, def string) string
	Strings(key string, def []string) []string
}

type ownerHomes struct {
	homes map[string]Home
	dirty bool
	// leaving is set when the owner quits. The entry is dropped once nothing
	// is left to write, unless the owner joined again in the meantime.
	leaving bool
	// saving counts writes of the entry in flight.
	saving int
}

// Manager keeps the homes of online players in memory and writes changes back
// to a Store. Homes are loaded lazily on first access.
type Manager struct {
	store Store
	conf  Config
	log   *slog.Logger
	now   func() time.Time

	patternMu sync.Mutex
	pattern   *regexp.Regexp
	source    string

	mu     sync.RWMutex
	owners map[uuid.UUID]*ownerHomes
}

// NewManager returns a Manager persisting to store.
func NewManager(store Store, conf Config, log *slog.Logger) *Manager {
	if store == nil {
		panic("home: manager requires store")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:  store,
		conf:   conf,
		log:    log.With("subsystem", "homes"),
		now:    time.Now,
		owners: make(map[uuid.UUID]*ownerHomes),
	}
}

// Load reads the homes of owner from the Store, replacing anything in memory.
func (m *Manager) Load(ctx context.Context, owner uuid.UUID) error {
	_, err := m.load(ctx, owner, true)
	return err
}

// Preload reads the homes of owner unless they are already in memory. It is
// called when a player joins so that the first menu opens without a store
// round trip.
func (m *Manager) Preload(ctx context.Context, owner uuid.UUID) error {
	m.mu.Lock()
	entry, ok := m.owners[owner]
	if ok {
		entry.leaving = false
	}
	m.mu.Unlock()
	if ok {
		return nil
	}
	_, err := m.load(ctx, owner, false)
	return err
}

func (m *Manager) load(ctx context.Context, owner uuid.UUID, replace bool) (*ownerHomes, error) {
	homes, err := m.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load homes of %v: %w", owner, err)
	}
	entry := &ownerHomes{homes: make(map[string]Home, len(homes))}
	for _, h := range homes {
		entry.homes[h.Key()] = h
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.owners[owner]; ok && !replace {
		return existing, nil
	}
	m.owners[owner] = entry
	return entry, nil
}

// Loaded reports if the homes of owner are in memory.
func (m *Manager) Loaded(owner uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.owners[owner]
	return ok
}

// Unload saves the homes of owner if they changed and drops them from memory.
// The homes stay in memory while they are written, so a Preload during the
// write keeps them. If the write fails they stay marked as changed for the
// next SaveDirty or SaveAll.
func (m *Manager) Unload(ctx context.Context, owner uuid.UUID) error {
	m.mu.Lock()
	entry, ok := m.owners[owner]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	entry.leaving = true
	if !entry.dirty {
		m.release(owner, entry)
		m.mu.Unlock()
		return nil
	}
	homes := sorted(entry.homes)
	entry.dirty = false
	entry.saving++
	m.mu.Unlock()

	err := m.store.Save(ctx, owner, homes)
	m.saved(owner, entry, err)
	if err != nil {
		return fmt.Errorf("save homes of %v: %w", owner, err)
	}
	return nil
}

// saved records the result of a write of entry started under mu.
func (m *Manager) saved(owner uuid.UUID, entry *ownerHomes, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.saving--
	if err != nil {
		entry.dirty = true
		return
	}
	m.release(owner, entry)
}

// release drops entry if its owner left and it has nothing left to write. mu
// must be held.
func (m *Manager) release(owner uuid.UUID, entry *ownerHomes) {
	if entry.leaving && !entry.dirty && entry.saving == 0 && m.owners[owner] == entry {
		delete(m.owners, owner)
	}
}

// entry returns the in-memory homes of owner, loading them if needed. The
// caller must not hold m.mu.
func (m *Manager) entry(owner uuid.UUID) (*ownerHomes, error) {
	m.mu.RLock()
	entry, ok := m.owners[owner]
	m.mu.RUnlock()
	if ok {
		return entry, nil
	}
	return m.load(context.Background(), owner, false)
}

// Limit returns the number of homes owner may have, or Unlimited.
func (m *Manager) Limit(owner uuid.UUID) int {
	def := m.conf.Int(KeyDefaultLimit, DefaultLimit)
	limit := m.conf.Int(KeyLimits+"."+owner.String(), def)
	if limit < 0 {
		return Unlimited
	}
	return limit
}

// ValidName reports if name matches the configured name pattern.
func (m *Manager) ValidName(name string) bool {
	return m.namePattern().MatchString(name)
}

func (m *Manager) namePattern() *regexp.Regexp {
	src := m.conf.String(KeyNamePattern, DefaultNamePattern)
	m.patternMu.Lock()
	defer m.patternMu.Unlock()
	if m.pattern != nil && m.source == src {
		return m.pattern
	}
	re, err := regexp.Compile(src)
	if err != nil {
		m.log.Error("Invalid home name pattern, using default.", "pattern", src, "error", err)
		re = regexp.MustCompile(DefaultNamePattern)
	}
	m.pattern, m.source = re, src
	return re
}

// WorldAllowed reports if homes may be created in world.
func (m *Manager) WorldAllowed(world string) bool {
	world = location.NormaliseWorld(world)
	for _, blocked := range m.conf.Strings(KeyWorldBlacklist, nil) {
		if location.NormaliseWorld(blocked) == world {
			return false
		}
	}
	return true
}

// CanCreate reports if owner has a free home slot.
func (m *Manager) CanCreate(owner uuid.UUID) (bool, error) {
	n, err := m.Count(owner)
	if err != nil {
		return false, err
	}
	limit := m.Limit(owner)
	return limit == Unlimited || n < limit, nil
}

// Count returns the number of homes owner has.
func (m *Manager) Count(owner uuid.UUID) (int, error) {
	entry, err := m.entry(owner)
	if err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(entry.homes), nil
}

// Create saves a new home for owner at loc.
func (m *Manager) Create(owner uuid.UUID, name string, loc location.Location) (Home, error) {
	name = strings.TrimSpace(name)
	if !m.ValidName(name) {
		return Home{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !m.WorldAllowed(loc.World) {
		return Home{}, fmt.Errorf("%w: %s", ErrWorldBlacklisted, loc.World)
	}
	entry, err := m.entry(owner)
	if err != nil {
		return Home{}, err
	}
	limit := m.Limit(owner)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := entry.homes[Key(name)]; exists {
		return Home{}, fmt.Errorf("%w: %s", ErrExists, name)
	}
	if limit != Unlimited && len(entry.homes) >= limit {
		return Home{}, fmt.Errorf("%w: %d", ErrLimitReached, limit)
	}
	h := Home{
		Name:      name,
		Location:  loc,
		Icon:      m.conf.String(KeyDefaultIcon, DefaultIcon),
		CreatedAt: m.now().UTC().Truncate(time.Second),
	}
	entry.homes[h.Key()] = h
	entry.dirty = true
	return h, nil
}

// Delete removes the home of owner called name.
func (m *Manager) Delete(owner uuid.UUID, name string) (Home, error) {
	entry, err := m.entry(owner)
	if err != nil {
		return Home{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := entry.homes[Key(name)]
	if !ok {
		return Home{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(entry.homes, Key(name))
	entry.dirty = true
	return h, nil
}

// Rename changes the name of a home, keeping its location, icon and creation
// time. Renaming to a different capitalisation of the same name is allowed.
func (m *Manager) Rename(owner uuid.UUID, from, to string) (Home, error) {
	to = strings.TrimSpace(to)
	if !m.ValidName(to) {
		return Home{}, fmt.Errorf("%w: %q", ErrInvalidName, to)
	}
	entry, err := m.entry(owner)
	if err != nil {
		return Home{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := entry.homes[Key(from)]
	if !ok {
		return Home{}, fmt.Errorf("%w: %s", ErrNotFound, from)
	}
	if Key(from) != Key(to) {
		if _, exists := entry.homes[Key(to)]; exists {
			return Home{}, fmt.Errorf("%w: %s", ErrExists, to)
		}
	}
	delete(entry.homes, Key(from))
	h.Name = to
	entry.homes[h.Key()] = h
	entry.dirty = true
	return h, nil
}

// SetIcon changes the icon shown for a home.
func (m *Manager) SetIcon(owner uuid.UUID, name, icon string) (Home, error) {
	entry, err := m.entry(owner)
	if err != nil {
		return Home{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := entry.homes[Key(name)]
	if !ok {
		return Home{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	h.Icon = icon
	entry.homes[h.Key()] = h
	entry.dirty = true
	return h, nil
}

// Get returns the home of owner called name.
func (m *Manager) Get(owner uuid.UUID, name string) (Home, error) {
	entry, err := m.entry(owner)
	if err != nil {
		return Home{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := entry.homes[Key(name)]
	if !ok {
		return Home{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return h, nil
}

// List returns the homes of owner ordered by creation time.
func (m *Manager) List(owner uuid.UUID) ([]Home, error) {
	entry, err := m.entry(owner)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(entry.homes), nil
}

// Owners returns the owners whose homes are in memory.
func (m *Manager) Owners() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owners := make([]uuid.UUID, 0, len(m.owners))
	for id := range m.owners {
		owners = append(owners, id)
	}
	slices.SortFunc(owners, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return owners
}

// SaveDirty writes the homes of every owner with unsaved changes.
func (m *Manager) SaveDirty(ctx context.Context) error {
	return m.save(ctx, false)
}

// SaveAll writes the homes of every owner in memory.
func (m *Manager) SaveAll(ctx context.Context) error {
	return m.save(ctx, true)
}

func (m *Manager) save(ctx context.Context, all bool) error {
	type pending struct {
		owner uuid.UUID
		homes []Home
		entry *ownerHomes
	}
	m.mu.Lock()
	var batch []pending
	for owner, entry := range m.owners {
		if !all && !entry.dirty {
			continue
		}
		batch = append(batch, pending{owner: owner, homes: sorted(entry.homes), entry: entry})
		entry.dirty = false
		entry.saving++
	}
	m.mu.Unlock()

	var errs []error
	for _, p := range batch {
		err := ctx.Err()
		if err == nil {
			err = m.store.Save(ctx, p.owner, p.homes)
		}
		m.saved(p.owner, p.entry, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("save homes of %v: %w", p.owner, err))
		}
	}
	if len(batch) != 0 {
		m.log.Debug("Saved homes.", "owners", len(batch), "errors", len(errs))
	}
	return errors.Join(errs...)
}

func sorted(homes map[string]Home) []Home {
	out := make([]Home, 0, len(homes))
	for _, h := range homes {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b Home) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
	return out
}
