package repository

import (
	"context"

	"medreminder/internal/domain/entity"
)

// TriggerIndexRepository persists the trigger IDs scheduled for each medicine.
type TriggerIndexRepository interface {
	// Load returns the stored trigger IDs, or nil when none are stored.
	Load(ctx context.Context, healthProductID entity.ID) ([]string, error)
	// Save replaces the stored trigger IDs. An empty list removes the entry.
	Save(ctx context.Context, healthProductID entity.ID, triggerIDs []string) error
	// Delete removes the stored trigger IDs.
	Delete(ctx context.Context, healthProductID entity.ID) error
}
