package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
	appErrors "medreminder/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aspirin(times ...string) dto.ScheduleRemindersRequest {
	return dto.ScheduleRemindersRequest{
		UserID:          7,
		HealthProductID: 42,
		MedicineName:    "Aspirin",
		DoseQuantity:    1,
		Unit:            "tablet",
		ReminderTimes:   times,
	}
}

func TestScheduleDailyReminders_Aspirin(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0800", "med_42_2000"}, ids)

	stored, err := st.index.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, ids, stored)
	assert.Equal(t, ids, st.scheduledIDs(t))

	req, ok := st.center.ScheduledRequestByID("med_42_0800")
	require.True(t, ok)
	assert.Equal(t, "Time to take Aspirin", req.Content.Title)
	assert.Equal(t, "Dose: 1 tablet", req.Content.Body)
	assert.Equal(t, constant.CategoryMedicineReminder, req.Content.CategoryIdentifier)
	assert.Equal(t, constant.ChannelMedicineReminders, req.Trigger.ChannelID)
	assert.True(t, req.Trigger.Repeats)
	assert.Equal(t, 8, req.Trigger.Hour)
	assert.Equal(t, 0, req.Trigger.Minute)
	assert.Equal(t, entity.ID(7), req.Content.Data.UserID)
	assert.Equal(t, "med_42_0800", req.Content.Data.NotificationID)
	assert.NotEmpty(t, req.Content.Data.CreatedAt)

	assert.True(t, st.notifications.IsInitialized())
}

func TestScheduleDailyReminders_SkipsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "24:00", "12:60", "abc", "", "7:5", "1:2:3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0800", "med_42_0705"}, ids)
	assert.Len(t, st.scheduledIDs(t), 2)
}

func TestScheduleDailyReminders_Boundaries(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("00:00", "23:59"))
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0000", "med_42_2359"}, ids)
}

func TestScheduleDailyReminders_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	first, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)
	second, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, st.scheduledIDs(t), 2)
}

func TestScheduleDailyReminders_DuplicateTimesCollapse(t *testing.T) {
	st := newTestStack(t)

	ids, err := st.scheduler.ScheduleDailyReminders(context.Background(), aspirin("08:00", "8:00", "08:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0800"}, ids)
}

func TestScheduleDailyReminders_CancelsStaleTriggers(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)
	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("09:00"))
	require.NoError(t, err)

	assert.Equal(t, []string{"med_42_0900"}, ids)
	assert.Equal(t, []string{"med_42_0900"}, st.scheduledIDs(t))
}

func TestScheduleDailyReminders_EmptyResultRemovesIndex(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00"))
	require.NoError(t, err)
	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("bad"))
	require.NoError(t, err)

	assert.Empty(t, ids)
	assert.False(t, st.index.has(42))
	assert.Empty(t, st.scheduledIDs(t))
}

func TestScheduleDailyReminders_PermissionDenied(t *testing.T) {
	st := newTestStack(t, notifier.WithPrompter(func(context.Context, notifier.Capabilities) notifier.PermissionStatus {
		return notifier.PermissionDenied
	}))

	ids, err := st.scheduler.ScheduleDailyReminders(context.Background(), aspirin("08:00"))
	assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	assert.Nil(t, ids)
	assert.Empty(t, st.scheduledIDs(t))
	assert.False(t, st.index.has(42))
	assert.Contains(t, st.alerts.titles(), "Permission Required")
}

func TestScheduleDailyReminders_MissingIDs(t *testing.T) {
	st := newTestStack(t)
	req := aspirin("08:00")
	req.HealthProductID = 0

	_, err := st.scheduler.ScheduleDailyReminders(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidScheduleInput)
}

func TestScheduleDailyReminders_IndexFailureIsReported(t *testing.T) {
	st := newTestStack(t)
	st.index.saveErr = errors.New("disk full")

	ids, err := st.scheduler.ScheduleDailyReminders(context.Background(), aspirin("08:00"))
	assert.ErrorIs(t, err, appErrors.ErrDatabaseOperation)
	assert.Empty(t, ids)
	// Nothing fires that the index does not know about.
	assert.Empty(t, st.scheduledIDs(t))
	assert.False(t, st.index.has(42))
}

func TestScheduleDailyReminders_IndexFailureKeepsPreviousTriggers(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)

	st.index.saveErr = errors.New("disk full")
	_, err = st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "12:00"))
	assert.ErrorIs(t, err, appErrors.ErrDatabaseOperation)

	stored, err := st.index.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0800", "med_42_2000"}, stored)
	assert.Equal(t, stored, st.scheduledIDs(t))

	st.index.saveErr = nil
	require.NoError(t, st.scheduler.CancelAllRemindersForMedicine(ctx, 42))
	assert.Empty(t, st.scheduledIDs(t))
}

func TestScheduleDailyReminders_UnreadableIndexCancelsStaleLiveTriggers(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)

	st.index.loadErr = errors.New("invalid character 'x' looking for beginning of value")
	ids, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("09:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"med_42_0900"}, ids)
	assert.Equal(t, []string{"med_42_0900"}, st.scheduledIDs(t))
}

func TestCancelAllRemindersForMedicine_UnreadableIndex(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)
	other := aspirin("09:00")
	other.HealthProductID = 421
	_, err = st.scheduler.ScheduleDailyReminders(ctx, other)
	require.NoError(t, err)
	_, err = st.scheduler.ScheduleSnooze(ctx, entity.NotificationPayload{UserID: 7, HealthProductID: 42})
	require.NoError(t, err)

	st.index.loadErr = errors.New("corrupt index")
	require.NoError(t, st.scheduler.CancelAllRemindersForMedicine(ctx, 42))

	assert.Equal(t, []string{"med_421_0900"}, st.scheduledIDs(t))
	assert.False(t, st.index.has(42))
}

func TestCancelAllRemindersForMedicine(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("08:00", "20:00"))
	require.NoError(t, err)
	other := aspirin("09:00")
	other.HealthProductID = 43
	_, err = st.scheduler.ScheduleDailyReminders(ctx, other)
	require.NoError(t, err)
	_, err = st.scheduler.ScheduleSnooze(ctx, entity.NotificationPayload{UserID: 7, HealthProductID: 42})
	require.NoError(t, err)

	require.NoError(t, st.scheduler.CancelAllRemindersForMedicine(ctx, 42))

	assert.Equal(t, []string{"med_43_0900"}, st.scheduledIDs(t))
	assert.False(t, st.index.has(42))
	assert.True(t, st.index.has(43))
}

func TestCancelAllRemindersForMedicine_ToleratesUnknownIDs(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	require.NoError(t, st.index.Save(ctx, 42, []string{"med_42_0800", "med_42_2000"}))

	require.NoError(t, st.scheduler.CancelAllRemindersForMedicine(ctx, 42))
	assert.False(t, st.index.has(42))

	require.NoError(t, st.scheduler.CancelAllRemindersForMedicine(ctx, 99))
}

func TestScheduleSnooze(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	require.NoError(t, st.notifications.Initialize(ctx))

	payload := entity.NotificationPayload{UserID: 7, HealthProductID: 42, MedicineName: "Aspirin", NotificationID: "med_42_0800"}
	id, err := st.scheduler.ScheduleSnooze(ctx, payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "snooze_42_"))

	req, ok := st.center.ScheduledRequestByID(id)
	require.True(t, ok)
	assert.False(t, req.Trigger.Repeats)
	assert.False(t, req.Trigger.Date.IsZero())
	assert.Equal(t, payload, req.Content.Data)

	_, err = st.scheduler.ScheduleSnooze(ctx, entity.NotificationPayload{})
	assert.ErrorIs(t, err, appErrors.ErrMalformedPayload)
}

func TestListScheduled(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.scheduler.ScheduleDailyReminders(ctx, aspirin("20:00", "08:00"))
	require.NoError(t, err)

	list, err := st.scheduler.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "med_42_0800", list[0].Identifier)
	assert.False(t, list[0].NextTrigger.IsZero())
}
