// Package yamlstore stores homes as one YAML document per player.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/location"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const extension = ".yml"

// Store keeps the homes of each player in <dir>/<uuid>.yml.
type Store struct {
	dir string
	mu  sync.Mutex
}

type playerFile struct {
	Homes map[string]homeEntry `yaml:"homes"`
}

type homeEntry struct {
	Name      string    `yaml:"name"`
	World     string    `yaml:"world"`
	X         float64   `yaml:"x"`
	Y         float64   `yaml:"y"`
	Z         float64   `yaml:"z"`
	Yaw       float64   `yaml:"yaw"`
	Pitch     float64   `yaml:"pitch"`
	Icon      string    `yaml:"icon,omitempty"`
	CreatedAt time.Time `yaml:"created-at"`
}

// Open returns a Store writing to dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("yamlstore: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create homes directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(owner uuid.UUID) string {
	return filepath.Join(s.dir, owner.String()+extension)
}

// Load implements home.Store.
func (s *Store) Load(_ context.Context, owner uuid.UUID) ([]home.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.path(owner))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read homes: %w", err)
	}
	var data playerFile
	if err := yaml.Unmarshal(contents, &data); err != nil {
		return nil, fmt.Errorf("decode homes: %w", err)
	}
	homes := make([]home.Home, 0, len(data.Homes))
	for key, e := range data.Homes {
		name := e.Name
		if name == "" {
			name = key
		}
		homes = append(homes, home.Home{
			Name:      name,
			Location:  location.New(e.World, mgl64.Vec3{e.X, e.Y, e.Z}, e.Yaw, e.Pitch),
			Icon:      e.Icon,
			CreatedAt: e.CreatedAt,
		})
	}
	sort.Slice(homes, func(i, j int) bool {
		return homes[i].CreatedAt.Before(homes[j].CreatedAt)
	})
	return homes, nil
}

// Save implements home.Store. Saving no homes removes the player's file.
func (s *Store) Save(_ context.Context, owner uuid.UUID, homes []home.Home) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(owner)
	if len(homes) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove homes: %w", err)
		}
		return nil
	}
	data := playerFile{Homes: make(map[string]homeEntry, len(homes))}
	for _, h := range homes {
		data.Homes[h.Key()] = homeEntry{
			Name:      h.Name,
			World:     h.Location.World,
			X:         h.Location.Pos[0],
			Y:         h.Location.Pos[1],
			Z:         h.Location.Pos[2],
			Yaw:       h.Location.Yaw,
			Pitch:     h.Location.Pitch,
			Icon:      h.Icon,
			CreatedAt: h.CreatedAt,
		}
	}
	encoded, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode homes: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("write homes: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace homes: %w", err)
	}
	return nil
}

// Owners implements home.Store.
func (s *Store) Owners(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read homes directory: %w", err)
	}
	var owners []uuid.UUID
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), extension))
		if err != nil {
			continue
		}
		owners = append(owners, id)
	}
	return owners, nil
}

// Close implements home.Store.
func (s *Store) Close() error {
	return nil
}

var _ home.Store = (*Store)(nil)
