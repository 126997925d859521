package service

import (
	"context"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
)

// SchedulerService defines the interface for reminder scheduling operations.
type SchedulerService interface {
	// ScheduleDailyReminders schedules one repeating trigger per valid dose time
	// and persists their IDs. It returns the IDs in input order.
	ScheduleDailyReminders(ctx context.Context, req dto.ScheduleRemindersRequest) ([]string, error)
	// CancelAllRemindersForMedicine cancels every trigger recorded for the medicine,
	// including pending snoozes, and removes the persisted list.
	CancelAllRemindersForMedicine(ctx context.Context, healthProductID entity.ID) error
	// ScheduleSnooze schedules a one-shot reminder carrying payload after the snooze delay.
	ScheduleSnooze(ctx context.Context, payload entity.NotificationPayload) (string, error)
	// ListScheduled returns all live triggers.
	ListScheduled(ctx context.Context) ([]notifier.ScheduledRequest, error)
}
