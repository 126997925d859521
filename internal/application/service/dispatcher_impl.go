package service

import (
	"context"
	"errors"
	"fmt"

	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/keylock"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"
)

// Response outcomes used as metric labels
const (
	outcomeTaken     = "taken"
	outcomeMissed    = "missed"
	outcomeSnoozed   = "snoozed"
	outcomeDuplicate = "duplicate"
	outcomeMalformed = "malformed"
	outcomeUnknown   = "unknown"
	outcomeFailed    = "failed"
)

type responseDispatcher struct {
	center     NotificationCenter
	scheduler  SchedulerService
	reconciler UsageReconciler
	alerter    Alerter
	inFlight   *keylock.KeyedLock
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewResponseDispatcher creates a new instance of ResponseDispatcher implementation
// and registers it as the response handler of notificationSvc.
func NewResponseDispatcher(
	center NotificationCenter,
	notificationSvc NotificationService,
	scheduler SchedulerService,
	reconciler UsageReconciler,
	alerter Alerter,
	m *metrics.Metrics,
	log logger.Logger,
) ResponseDispatcher {
	d := &responseDispatcher{
		center:     center,
		scheduler:  scheduler,
		reconciler: reconciler,
		alerter:    alerter,
		inFlight:   keylock.New(),
		metrics:    m,
		log:        log,
	}

	// Set the handler on the notification service implementation (dependency injection workaround)
	if impl, ok := notificationSvc.(*notificationService); ok {
		impl.SetResponseHandler(d.HandleResponse)
		log.Info("Response handler set for NotificationService.")
	} else if notificationSvc != nil {
		log.Warn("NotificationService is not the expected implementation type, response handler not set")
	}
	return d
}

func (d *responseDispatcher) count(outcome string) {
	if d.metrics != nil {
		d.metrics.Responses.WithLabelValues(outcome).Inc()
	}
}

func (d *responseDispatcher) HandleResponse(ctx context.Context, resp notifier.Response) (err error) {
	payload := resp.Notification.Request.Content.Data
	notificationID := resp.Notification.Request.Identifier
	if notificationID == "" {
		notificationID = payload.NotificationID
	}

	// Without an identifier the event cannot be deduplicated or dismissed.
	if notificationID == "" {
		d.count(outcomeMalformed)
		d.log.Error("Response without a notification identifier", appErrors.ErrMalformedPayload)
		return fmt.Errorf("%w: missing notification identifier", appErrors.ErrMalformedPayload)
	}

	release, ok := d.inFlight.TryAcquire(notificationID)
	if !ok {
		d.count(outcomeDuplicate)
		d.log.Debug(fmt.Sprintf("Already processing notification %s", notificationID))
		return appErrors.ErrDuplicateResponse
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			d.count(outcomeFailed)
			err = fmt.Errorf("panic while handling notification %s: %v", notificationID, r)
			d.log.Error("Recovered from panic in response handler", err)
		}
	}()

	if err := d.center.Dismiss(ctx, notificationID); err != nil {
		d.log.Warn(fmt.Sprintf("Failed to dismiss notification %s: %v", notificationID, err))
	}

	if !payload.Valid() {
		d.count(outcomeMalformed)
		d.log.Error(fmt.Sprintf("Invalid notification data for %s: userId=%d healthProductId=%d",
			notificationID, payload.UserID, payload.HealthProductID), appErrors.ErrMalformedPayload)
		return appErrors.ErrMalformedPayload
	}

	action := constant.ActionIdentifier(resp.ActionIdentifier)
	d.log.Info(fmt.Sprintf("Processing action %s for notification %s", action, notificationID))

	switch action {
	case constant.ActionTaken, constant.ActionDefault:
		return d.recordUsage(ctx, payload, true)
	case constant.ActionMissed:
		return d.recordUsage(ctx, payload, false)
	case constant.ActionSnooze:
		return d.snooze(ctx, payload)
	default:
		d.count(outcomeUnknown)
		d.log.Warn(fmt.Sprintf("Unknown action %q for notification %s", action, notificationID))
		return nil
	}
}

func (d *responseDispatcher) recordUsage(ctx context.Context, payload entity.NotificationPayload, isTaken bool) error {
	result, err := d.reconciler.RecordUsage(ctx, payload, isTaken)
	if err != nil {
		d.count(outcomeFailed)
		d.alerter.Alert(ctx, "Error", fmt.Sprintf("Failed to record medicine usage: %v", err))
		return err
	}

	if result.StockErr != nil {
		if errors.Is(result.StockErr, appErrors.ErrInsufficientQuantity) {
			d.alerter.Alert(ctx, "Low Stock Warning",
				fmt.Sprintf("Your %s is running low! Please reorder soon.", payload.DisplayName()))
		} else {
			d.alerter.Alert(ctx, "Warning",
				"Medicine usage recorded, but stock update failed. Please check your inventory.")
		}
	}

	if isTaken {
		d.count(outcomeTaken)
		d.alerter.Alert(ctx, "Success", fmt.Sprintf("Medicine %q marked as taken!", payload.DisplayName()))
	} else {
		d.count(outcomeMissed)
		d.alerter.Alert(ctx, "Noted", fmt.Sprintf("Medicine %q marked as missed.", payload.DisplayName()))
	}
	return nil
}

func (d *responseDispatcher) snooze(ctx context.Context, payload entity.NotificationPayload) error {
	id, err := d.scheduler.ScheduleSnooze(ctx, payload)
	if err != nil {
		d.count(outcomeFailed)
		d.log.Error(fmt.Sprintf("Failed to snooze reminder for medicine %d", payload.HealthProductID), err)
		d.alerter.Alert(ctx, "Error", "Failed to snooze the reminder. Please try again.")
		return err
	}
	d.count(outcomeSnoozed)
	d.log.Debug(fmt.Sprintf("Snooze scheduled as %s", id))
	return nil
}
