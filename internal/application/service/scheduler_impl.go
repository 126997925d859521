package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/repository"
	"medreminder/internal/infrastructure/notifier"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/google/uuid"
)

// Define constants for trigger kinds used as metric labels
const (
	triggerKindDaily  = "daily"
	triggerKindSnooze = "snooze"
)

type schedulerService struct {
	center        NotificationCenter
	index         repository.TriggerIndexRepository
	notifications NotificationService
	metrics       *metrics.Metrics
	log           logger.Logger
	snoozeDelay   time.Duration
	now           func() time.Time
	mu            sync.Mutex // Serializes read-modify-write of the trigger index
}

// NewSchedulerService creates a new instance of SchedulerService implementation.
func NewSchedulerService(
	center NotificationCenter,
	index repository.TriggerIndexRepository,
	notifications NotificationService,
	m *metrics.Metrics,
	snoozeDelay time.Duration,
	log logger.Logger,
) SchedulerService {
	return &schedulerService{
		center:        center,
		index:         index,
		notifications: notifications,
		metrics:       m,
		log:           log,
		snoozeDelay:   snoozeDelay,
		now:           time.Now,
	}
}

// reminderContent builds what a reminder notification shows.
func reminderContent(payload entity.NotificationPayload) notifier.Content {
	return notifier.Content{
		Title:              "Time to take " + payload.DisplayName(),
		Body:               fmt.Sprintf("Dose: %s %s", strconv.FormatFloat(payload.DoseQuantity, 'f', -1, 64), payload.Unit),
		Data:               payload,
		CategoryIdentifier: constant.CategoryMedicineReminder,
		Sound:              constant.SoundDefault,
	}
}

func (s *schedulerService) channelID() string {
	if s.center.RequiresChannels() {
		return constant.ChannelMedicineReminders
	}
	return ""
}

// ScheduleDailyReminders schedules one repeating trigger per valid dose time.
func (s *schedulerService) ScheduleDailyReminders(ctx context.Context, req dto.ScheduleRemindersRequest) ([]string, error) {
	if req.HealthProductID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId and healthProductId are required", appErrors.ErrInvalidScheduleInput)
	}

	if !s.notifications.IsInitialized() {
		s.log.Warn("Notification service not initialized, initializing now...")
		if err := s.notifications.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.notifications.EnsurePermission(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.index.Load(ctx, req.HealthProductID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to load trigger index for medicine %d, using live triggers: %v", req.HealthProductID, err))
		previous = s.liveIDs(ctx, entity.DailyTriggerPrefix(req.HealthProductID))
	}

	s.log.Info(fmt.Sprintf("Scheduling %d reminders for %s", len(req.ReminderTimes), req.MedicineName))

	createdAt := s.now().UTC().Format(time.RFC3339)
	ids := make([]string, 0, len(req.ReminderTimes))
	seen := make(map[string]struct{}, len(req.ReminderTimes))

	for _, raw := range req.ReminderTimes {
		doseTime, err := entity.ParseDoseTime(raw)
		if err != nil {
			s.log.Warn(fmt.Sprintf("Invalid time: %q, skipping", raw))
			if s.metrics != nil {
				s.metrics.InvalidDoseTimes.Inc()
			}
			continue
		}

		triggerID := entity.TriggerID(req.HealthProductID, doseTime)
		if _, dup := seen[triggerID]; dup {
			s.log.Debug(fmt.Sprintf("Duplicate dose time %s for medicine %d", doseTime, req.HealthProductID))
			continue
		}

		payload := entity.NotificationPayload{
			UserID:          req.UserID,
			HealthProductID: req.HealthProductID,
			MedicineName:    req.MedicineName,
			DoseQuantity:    req.DoseQuantity,
			Unit:            req.Unit,
			CreatedAt:       createdAt,
			NotificationID:  triggerID,
		}
		_, err = s.center.Schedule(ctx, notifier.Request{
			Identifier: triggerID,
			Content:    reminderContent(payload),
			Trigger: notifier.Trigger{
				Hour:      doseTime.Hour,
				Minute:    doseTime.Minute,
				Repeats:   true,
				ChannelID: s.channelID(),
			},
		})
		if err != nil {
			s.log.Error(fmt.Sprintf("Failed to schedule reminder %s", triggerID), err)
			continue
		}

		seen[triggerID] = struct{}{}
		ids = append(ids, triggerID)
		if s.metrics != nil {
			s.metrics.TriggersScheduled.WithLabelValues(triggerKindDaily).Inc()
		}
		s.log.Info(fmt.Sprintf("Scheduled reminder %s at %s", triggerID, doseTime))
	}

	if err := s.index.Save(ctx, req.HealthProductID, ids); err != nil {
		s.log.Error(fmt.Sprintf("Failed to persist trigger index for medicine %d", req.HealthProductID), err)
		s.rollback(ctx, ids, previous)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	// Triggers from the previous list that were not rescheduled would keep
	// firing without being tracked.
	for _, old := range previous {
		if _, kept := seen[old]; kept {
			continue
		}
		s.cancel(ctx, old)
	}

	s.log.Info(fmt.Sprintf("Scheduled %d/%d reminders for medicine %d", len(ids), len(req.ReminderTimes), req.HealthProductID))
	return ids, nil
}

// CancelAllRemindersForMedicine cancels every trigger recorded for the medicine.
func (s *schedulerService) CancelAllRemindersForMedicine(ctx context.Context, healthProductID entity.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index.Load(ctx, healthProductID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to load trigger index for medicine %d, using live triggers: %v", healthProductID, err))
		ids = s.liveIDs(ctx, entity.DailyTriggerPrefix(healthProductID))
	}
	ids = append(ids, s.liveIDs(ctx, entity.SnoozeTriggerPrefix(healthProductID))...)

	cancelled := 0
	for _, id := range ids {
		if s.cancel(ctx, id) {
			cancelled++
		}
	}

	if err := s.index.Delete(ctx, healthProductID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to remove trigger index for medicine %d", healthProductID), err)
		return err
	}

	s.log.Info(fmt.Sprintf("Cancelled %d reminders for medicine %d", cancelled, healthProductID))
	return nil
}

// liveIDs lists the identifiers of live requests starting with prefix.
func (s *schedulerService) liveIDs(ctx context.Context, prefix string) []string {
	live, err := s.center.Scheduled(ctx)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to list scheduled notifications: %v", err))
		return nil
	}
	var ids []string
	for _, r := range live {
		if strings.HasPrefix(r.Identifier, prefix) {
			ids = append(ids, r.Identifier)
		}
	}
	return ids
}

func (s *schedulerService) cancel(ctx context.Context, id string) bool {
	if err := s.center.Cancel(ctx, id); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to cancel reminder %s: %v", id, err))
		return false
	}
	if s.metrics != nil {
		s.metrics.TriggersCancelled.Inc()
	}
	return true
}

// rollback cancels the triggers of a scheduling call whose index could not be
// saved. Triggers that were already in the previous list stay live, so the
// stored list still matches what fires.
func (s *schedulerService) rollback(ctx context.Context, scheduled, previous []string) {
	kept := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		kept[id] = struct{}{}
	}
	for _, id := range scheduled {
		if _, ok := kept[id]; ok {
			continue
		}
		s.cancel(ctx, id)
	}
}

// ScheduleSnooze schedules a one-shot follow-up reminder.
func (s *schedulerService) ScheduleSnooze(ctx context.Context, payload entity.NotificationPayload) (string, error) {
	if !payload.Valid() {
		return "", appErrors.ErrMalformedPayload
	}

	id := entity.SnoozeTriggerPrefix(payload.HealthProductID) + uuid.NewString()
	at := s.now().Add(s.snoozeDelay)

	_, err := s.center.Schedule(ctx, notifier.Request{
		Identifier: id,
		Content:    reminderContent(payload),
		Trigger: notifier.Trigger{
			Date:      at,
			ChannelID: s.channelID(),
		},
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrNotAuthorized) {
			return "", fmt.Errorf("%w: %v", appErrors.ErrPermissionDenied, err)
		}
		return "", err
	}

	if s.metrics != nil {
		s.metrics.TriggersScheduled.WithLabelValues(triggerKindSnooze).Inc()
	}
	s.log.Info(fmt.Sprintf("Snoozed reminder for medicine %d until %s (%s)", payload.HealthProductID, at.Format(time.Kitchen), id))
	return id, nil
}

func (s *schedulerService) ListScheduled(ctx context.Context) ([]notifier.ScheduledRequest, error) {
	return s.center.Scheduled(ctx)
}
