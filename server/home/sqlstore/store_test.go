package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/location"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "homes.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	homes := []home.Home{
		{Name: "Base", Location: location.New("overworld", mgl64.Vec3{1, 64, 1}, 90, 5), Icon: "bed", CreatedAt: created},
		{Name: "end", Location: location.New("end", mgl64.Vec3{0, 50, 0}, 0, 0), Icon: "ender_pearl", CreatedAt: created.Add(time.Minute)},
	}
	if err := s.Save(ctx, owner, homes); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, other, homes[:1]); err != nil {
		t.Fatalf("save other: %v", err)
	}

	loaded, err := s.Load(ctx, owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d homes", len(loaded))
	}
	for i := range homes {
		if loaded[i].Name != homes[i].Name || loaded[i].Location != homes[i].Location ||
			loaded[i].Icon != homes[i].Icon || !loaded[i].CreatedAt.Equal(homes[i].CreatedAt) {
			t.Fatalf("home %d mismatch: got %+v, want %+v", i, loaded[i], homes[i])
		}
	}

	owners, err := s.Owners(ctx)
	if err != nil || len(owners) != 2 {
		t.Fatalf("owners = %v, %v", owners, err)
	}
}

func TestSaveReplaces(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	owner := uuid.New()
	first := []home.Home{
		{Name: "a", Location: location.New("overworld", mgl64.Vec3{}, 0, 0)},
		{Name: "b", Location: location.New("overworld", mgl64.Vec3{}, 0, 0)},
	}
	if err := s.Save(ctx, owner, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, owner, first[1:]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	loaded, err := s.Load(ctx, owner)
	if err != nil || len(loaded) != 1 || loaded[0].Name != "b" {
		t.Fatalf("after replace: %v, %v", loaded, err)
	}
	if err := s.Save(ctx, owner, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	owners, err := s.Owners(ctx)
	if err != nil || len(owners) != 0 {
		t.Fatalf("owners after clear = %v, %v", owners, err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
