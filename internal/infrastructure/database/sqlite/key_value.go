package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type keyValueRepository struct {
	db *gorm.DB
}

// NewKeyValueRepository creates a new instance of KeyValueStore.
func NewKeyValueRepository(db *gorm.DB) repository.KeyValueStore {
	return &keyValueRepository{db: db}
}

// Get retrieves the value stored under key.
func (r *keyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var kv entity.KeyValue
	if err := r.db.WithContext(ctx).Where("kv_key = ?", key).First(&kv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("🔴 ERROR: failed to get key %s: %w", key, err)
	}
	return kv.Value, true, nil
}

// Set upserts the value stored under key.
func (r *keyValueRepository) Set(ctx context.Context, key, value string) error {
	kv := entity.KeyValue{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("🔴 ERROR: failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (r *keyValueRepository) Remove(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&entity.KeyValue{}).Error; err != nil {
		return fmt.Errorf("🔴 ERROR: failed to remove key %s: %w", key, err)
	}
	return nil
}
