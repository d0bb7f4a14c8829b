package kvstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is one persisted slot row.
type slotRecord struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Doc       []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (slotRecord) TableName() string { return "slots" }

// Gorm is a Store backed by a slots table.
type Gorm struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database at path and
// migrates the slots table. Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}
	return NewGorm(db)
}

// NewGorm wraps an existing gorm connection, migrating the slots
// table if needed.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slots table: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(key string) ([]byte, error) {
	var record slotRecord
	err := g.db.First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return record.Doc, nil
}

func (g *Gorm) Put(key string, value []byte) error {
	record := slotRecord{Key: key, Doc: value}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}
