// Package sqlite stores dialogue records in a SQLite database through gorm.
// Each save slot is one row holding the serialized records.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/serialization"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// SaveSlot is the row layout.
type SaveSlot struct {
	SlotID    string `gorm:"column:slot_id;primaryKey"`
	Data      []byte `gorm:"column:data;not null"`
	UpdatedAt time.Time
}

func (SaveSlot) TableName() string { return "dialogue_save_slots" }

// Store implements ports.HistoryStore on a gorm database.
type Store struct {
	db         *gorm.DB
	serializer *serialization.Serializer
}

// Option configures a Store.
type Option func(*Store)

// WithSerializer sets the encoding of the data column. The default is MessagePack with zstd.
func WithSerializer(s *serialization.Serializer) Option {
	return func(st *Store) {
		st.serializer = s
	}
}

// Open opens (or creates) the SQLite database at path and migrates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return NewFromDB(db, opts...)
}

// NewFromDB wraps an existing connection and migrates the schema.
func NewFromDB(db *gorm.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, serializer: serialization.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.AutoMigrate(&SaveSlot{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// Save upserts the slot row.
func (s *Store) Save(ctx context.Context, slotID string, h domain.Histories) error {
	data, err := s.serializer.Serialize(h)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	row := SaveSlot{SlotID: slotID, Data: data, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %q: %w", slotID, err)
	}
	return nil
}

// Load reads the slot row.
func (s *Store) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	var row SaveSlot
	err := s.db.WithContext(ctx).Where("slot_id = ?", slotID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to load slot %q: %w", slotID, err)
	}

	var h domain.Histories
	if err := s.serializer.Deserialize(row.Data, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if h == nil {
		h = domain.Histories{}
	}
	return h, nil
}

// Delete removes the slot row.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	return s.db.WithContext(ctx).Where("slot_id = ?", slotID).Delete(&SaveSlot{}).Error
}

// List returns every slot ID in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	slots := []string{}
	err := s.db.WithContext(ctx).Model(&SaveSlot{}).Order("slot_id").Pluck("slot_id", &slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
