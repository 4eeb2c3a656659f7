// Package sqlite provides a KVStore on an embedded SQLite database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	StoreKey  string    `gorm:"column:store_key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	Version   int64     `gorm:"column:version;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (kvEntry) TableName() string { return "kv_entries" }

type GormKVStore struct {
	db *gorm.DB
}

// NewKVStore migrates the kv_entries table and returns a store over db.
func NewKVStore(db *gorm.DB) (*GormKVStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GormKVStore{db: db}, nil
}

var _ portsrepo.KVStore = (*GormKVStore)(nil)

func (s *GormKVStore) Get(ctx context.Context, key string) (*portsrepo.Entry, error) {
	var row kvEntry
	err := s.db.WithContext(ctx).Where("store_key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return &portsrepo.Entry{Key: row.StoreKey, Value: row.Value, Version: row.Version}, nil
}

func (s *GormKVStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current kvEntry
		err := tx.Where("store_key = ?", key).Take(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			version = 1
			return tx.Create(&kvEntry{StoreKey: key, Value: value, Version: version, UpdatedAt: time.Now().UTC()}).Error
		case err != nil:
			return err
		}
		version = current.Version + 1
		return tx.Model(&kvEntry{}).
			Where("store_key = ?", key).
			Updates(map[string]any{"value": value, "version": version, "updated_at": time.Now().UTC()}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set %q: %w", key, err)
	}
	return version, nil
}

func (s *GormKVStore) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	db := s.db.WithContext(ctx)

	var result *gorm.DB
	if expectedVersion == 0 {
		result = db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&kvEntry{StoreKey: key, Value: value, Version: 1, UpdatedAt: time.Now().UTC()})
	} else {
		result = db.Model(&kvEntry{}).
			Where("store_key = ? AND version = ?", key, expectedVersion).
			Updates(map[string]any{"value": value, "version": expectedVersion + 1, "updated_at": time.Now().UTC()})
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to compare-and-swap %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.ErrConflict
	}
	return expectedVersion + 1, nil
}

func (s *GormKVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("store_key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *GormKVStore) ListByPrefix(ctx context.Context, prefix string) ([]portsrepo.Entry, error) {
	var rows []kvEntry
	err := s.db.WithContext(ctx).
		Where("substr(store_key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("store_key").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}

	entries := make([]portsrepo.Entry, len(rows))
	for i, row := range rows {
		entries[i] = portsrepo.Entry{Key: row.StoreKey, Value: row.Value, Version: row.Version}
	}
	return entries, nil
}
