package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/repository"
)

type triggerIndexRepository struct {
	kv repository.KeyValueStore
}

// NewTriggerIndexRepository stores trigger ID lists as JSON arrays in kv under
// notifications_<healthProductId>.
func NewTriggerIndexRepository(kv repository.KeyValueStore) repository.TriggerIndexRepository {
	return &triggerIndexRepository{kv: kv}
}

// Load returns the trigger IDs stored for a medicine.
func (r *triggerIndexRepository) Load(ctx context.Context, healthProductID entity.ID) ([]string, error) {
	key := entity.TriggerIndexKey(healthProductID)
	raw, found, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("🔴 ERROR: corrupt trigger index %s: %w", key, err)
	}
	return ids, nil
}

// Save replaces the trigger IDs stored for a medicine.
func (r *triggerIndexRepository) Save(ctx context.Context, healthProductID entity.ID, triggerIDs []string) error {
	if len(triggerIDs) == 0 {
		return r.Delete(ctx, healthProductID)
	}
	raw, err := json.Marshal(triggerIDs)
	if err != nil {
		return fmt.Errorf("🔴 ERROR: failed to encode trigger index: %w", err)
	}
	return r.kv.Set(ctx, entity.TriggerIndexKey(healthProductID), string(raw))
}

// Delete removes the trigger IDs stored for a medicine.
func (r *triggerIndexRepository) Delete(ctx context.Context, healthProductID entity.ID) error {
	return r.kv.Remove(ctx, entity.TriggerIndexKey(healthProductID))
}
