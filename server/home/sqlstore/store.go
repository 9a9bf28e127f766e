// Package sqlstore stores homes in a SQLite database through gorm.
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/location"
	"github.com/glebarez/sqlite"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// record is the database row of a single home.
type record struct {
	ID        uint   `gorm:"primaryKey"`
	Owner     string `gorm:"size:36;not null;uniqueIndex:idx_owner_name"`
	Key       string `gorm:"size:64;not null;uniqueIndex:idx_owner_name"`
	Name      string `gorm:"size:64;not null"`
	World     string `gorm:"size:32;not null"`
	X, Y, Z   float64
	Yaw       float64
	Pitch     float64
	Icon      string `gorm:"size:64"`
	CreatedAt time.Time
}

func (record) TableName() string {
	return "homes"
}

// Store keeps homes in a single table keyed by owner and home name.
type Store struct {
	db *gorm.DB
}

// Open opens the SQLite database at path and migrates the homes table.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlstore: database path must not be empty")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open homes database: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate homes table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load implements home.Store.
func (s *Store) Load(ctx context.Context, owner uuid.UUID) ([]home.Home, error) {
	var rows []record
	err := s.db.WithContext(ctx).
		Where("owner = ?", owner.String()).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query homes: %w", err)
	}
	homes := make([]home.Home, 0, len(rows))
	for _, r := range rows {
		homes = append(homes, home.Home{
			Name:      r.Name,
			Location:  location.New(r.World, mgl64.Vec3{r.X, r.Y, r.Z}, r.Yaw, r.Pitch),
			Icon:      r.Icon,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return homes, nil
}

// Save implements home.Store by replacing every row of owner in one
// transaction.
func (s *Store) Save(ctx context.Context, owner uuid.UUID, homes []home.Home) error {
	rows := make([]record, 0, len(homes))
	for _, h := range homes {
		rows = append(rows, record{
			Owner:     owner.String(),
			Key:       h.Key(),
			Name:      h.Name,
			World:     h.Location.World,
			X:         h.Location.Pos[0],
			Y:         h.Location.Pos[1],
			Z:         h.Location.Pos[2],
			Yaw:       h.Location.Yaw,
			Pitch:     h.Location.Pitch,
			Icon:      h.Icon,
			CreatedAt: h.CreatedAt,
		})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner = ?", owner.String()).Delete(&record{}).Error; err != nil {
			return fmt.Errorf("clear homes: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert homes: %w", err)
		}
		return nil
	})
}

// Owners implements home.Store.
func (s *Store) Owners(ctx context.Context) ([]uuid.UUID, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&record{}).Distinct().Pluck("owner", &ids).Error; err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	owners := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		owners = append(owners, parsed)
	}
	return owners, nil
}

// Close implements home.Store.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ home.Store = (*Store)(nil)
