package service

import (
	"context"

	"medreminder/internal/domain/entity"
)

// UsageResult reports what RecordUsage achieved. StockErr is set when the
// usage log was created but the stock decrement failed; it wraps
// ErrRemoteStockFailure.
type UsageResult struct {
	LogCreated   bool
	StockUpdated bool
	StockErr     error
}

// UsageReconciler records taken/missed doses with the remote API.
type UsageReconciler interface {
	// RecordUsage creates the usage log and, for taken doses, decrements stock.
	RecordUsage(ctx context.Context, payload entity.NotificationPayload, isTaken bool) (UsageResult, error)
}
