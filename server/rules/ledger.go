package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
)

// ErrLedgerPath is returned by LoadLedger when no path is given.
var ErrLedgerPath = errors.New("ledger path must not be empty")

// Ledger records which players accepted the rules. Entries are persisted in a
// TOML file.
type Ledger struct {
	mu       sync.RWMutex
	players  map[uuid.UUID]struct{}
	filePath string
}

type ledgerFile struct {
	Players []string `toml:"players"`
}

// LoadLedger loads the ledger stored in the file at path. If the file does not
// exist yet, it is created with no players.
func LoadLedger(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrLedgerPath
	}
	l := &Ledger{
		players:  make(map[uuid.UUID]struct{}),
		filePath: path,
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Accepted reports if the player accepted the rules.
func (l *Ledger) Accepted(id uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.players[id]
	return ok
}

// Accept records that the player accepted the rules. The returned bool reports
// if the player was newly added.
func (l *Ledger) Accept(id uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.players[id]; exists {
		return false, nil
	}
	l.players[id] = struct{}{}
	if err := l.writeLocked(); err != nil {
		delete(l.players, id)
		return false, err
	}
	return true, nil
}

// Reset forgets that the player accepted the rules, so they are asked again on
// their next join. The returned bool reports if the player was recorded.
func (l *Ledger) Reset(id uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.players[id]; !exists {
		return false, nil
	}
	delete(l.players, id)
	if err := l.writeLocked(); err != nil {
		l.players[id] = struct{}{}
		return false, err
	}
	return true, nil
}

// Players returns the players who accepted the rules, sorted by UUID.
func (l *Ledger) Players() []uuid.UUID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedLocked()
}

// Reload rereads the ledger file.
func (l *Ledger) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := ledgerFile{}
	contents, err := os.ReadFile(l.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.players = make(map[uuid.UUID]struct{})
			return l.writeLocked()
		}
		return fmt.Errorf("read ledger: %w", err)
	}
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &data); err != nil {
			return fmt.Errorf("decode ledger: %w", err)
		}
	}
	l.players = make(map[uuid.UUID]struct{}, len(data.Players))
	for _, entry := range data.Players {
		id, err := uuid.Parse(strings.TrimSpace(entry))
		if err != nil {
			continue
		}
		l.players[id] = struct{}{}
	}
	return nil
}

func (l *Ledger) writeLocked() error {
	dir := filepath.Dir(l.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	ids := l.sortedLocked()
	data := ledgerFile{Players: make([]string, len(ids))}
	for i, id := range ids {
		data.Players[i] = id.String()
	}
	encoded, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(l.filePath, encoded, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (l *Ledger) sortedLocked() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.players))
	for id := range l.players {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids
}
