package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/healthapi"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"
)

const (
	defaultUsageLogAttempts = 3
	defaultUsageLogBackoff  = 500 * time.Millisecond
)

type usageReconciler struct {
	api            HealthAPI
	metrics        *metrics.Metrics
	log            logger.Logger
	maxAttempts    int
	initialBackoff time.Duration
	now            func() time.Time
}

// NewUsageReconciler creates a new instance of UsageReconciler implementation.
// Zero maxAttempts or backoff select the defaults (3 attempts, 500ms).
func NewUsageReconciler(
	api HealthAPI,
	m *metrics.Metrics,
	maxAttempts int,
	initialBackoff time.Duration,
	log logger.Logger,
) UsageReconciler {
	if maxAttempts <= 0 {
		maxAttempts = defaultUsageLogAttempts
	}
	if initialBackoff <= 0 {
		initialBackoff = defaultUsageLogBackoff
	}
	return &usageReconciler{
		api:            api,
		metrics:        m,
		log:            log,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		now:            time.Now,
	}
}

func (r *usageReconciler) RecordUsage(ctx context.Context, payload entity.NotificationPayload, isTaken bool) (UsageResult, error) {
	var result UsageResult
	if !payload.Valid() {
		return result, appErrors.ErrMalformedPayload
	}

	entry := entity.UsageLogEntry{
		UserID:          payload.UserID,
		HealthProductID: payload.HealthProductID,
		IsTaken:         isTaken,
		CreatedAt:       r.now().UTC().Format(time.RFC3339),
	}

	if err := r.addLogWithRetry(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.UsageLogFailures.Inc()
		}
		r.log.Error(fmt.Sprintf("Failed to log medicine usage for medicine %d", payload.HealthProductID), err)
		return result, fmt.Errorf("%w: %w", appErrors.ErrRemoteLogFailure, err)
	}
	result.LogCreated = true
	r.log.Info(fmt.Sprintf("Medicine usage logged: medicine=%d taken=%t", payload.HealthProductID, isTaken))

	if !isTaken {
		return result, nil
	}

	if err := r.api.RecordMedicineUsage(ctx, payload.HealthProductID); err != nil {
		r.log.Warn(fmt.Sprintf("Stock update failed for medicine %d: %v", payload.HealthProductID, err))
		if r.metrics != nil {
			r.metrics.StockFailures.WithLabelValues(stockFailureReason(err)).Inc()
		}
		result.StockErr = fmt.Errorf("%w: %w", appErrors.ErrRemoteStockFailure, err)
		return result, nil
	}
	result.StockUpdated = true
	return result, nil
}

// addLogWithRetry retries transient failures with exponential backoff.
func (r *usageReconciler) addLogWithRetry(ctx context.Context, entry entity.UsageLogEntry) error {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if r.metrics != nil {
			r.metrics.UsageLogAttempts.Inc()
		}

		created, err := r.api.AddMedicineUsageLog(ctx, entry)
		if err == nil && created {
			return nil
		}
		if err == nil {
			// 2xx other than 201 Created is not retried.
			return fmt.Errorf("%w: usage log was not created", appErrors.ErrRemoteAPI)
		}
		if !healthapi.IsTransient(err) {
			return err
		}

		lastErr = err
		if attempt < r.maxAttempts-1 {
			backoff := time.Duration(float64(r.initialBackoff) * math.Pow(2, float64(attempt)))
			r.log.Warn(fmt.Sprintf("Usage log attempt %d/%d failed, retrying in %s: %v", attempt+1, r.maxAttempts, backoff, err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", r.maxAttempts, lastErr)
}

func stockFailureReason(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrInsufficientQuantity):
		return "insufficient_quantity"
	case errors.Is(err, appErrors.ErrHealthProductNotFound):
		return "not_found"
	case errors.Is(err, appErrors.ErrHealthProductExpired):
		return "expired"
	}
	return "other"
}
