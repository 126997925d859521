package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/scheduler"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresenter struct {
	mu    sync.Mutex
	shown []Notification
	err   error
}

func (p *recordingPresenter) Present(ctx context.Context, n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, n)
	return p.err
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shown)
}

func newTestCenter(t *testing.T, opts ...Option) *Center {
	t.Helper()
	c := NewCenter(scheduler.NewScheduler(logger.Nop(), time.UTC), logger.Nop(), opts...)
	t.Cleanup(c.Stop)
	return c
}

func grantedCenter(t *testing.T, opts ...Option) *Center {
	t.Helper()
	c := newTestCenter(t, opts...)
	status, err := c.RequestPermissions(context.Background(), Capabilities{Alert: true})
	require.NoError(t, err)
	require.Equal(t, PermissionGranted, status)
	return c
}

func dailyRequest(id string, hour, minute int) Request {
	return Request{
		Identifier: id,
		Content: Content{
			Title: "Time to take Aspirin",
			Body:  "Dose: 1 tablet",
			Data:  entity.NotificationPayload{UserID: 7, HealthProductID: 42, NotificationID: id},
		},
		Trigger: Trigger{Hour: hour, Minute: minute, Repeats: true},
	}
}

func TestRequestPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("default prompter grants", func(t *testing.T) {
		c := newTestCenter(t)
		status, _ := c.GetPermissions(ctx)
		assert.Equal(t, PermissionUndetermined, status)

		status, err := c.RequestPermissions(ctx, Capabilities{Alert: true})
		require.NoError(t, err)
		assert.Equal(t, PermissionGranted, status)
	})

	t.Run("refusal is sticky", func(t *testing.T) {
		prompts := 0
		c := newTestCenter(t, WithPrompter(func(context.Context, Capabilities) PermissionStatus {
			prompts++
			return PermissionDenied
		}))

		status, err := c.RequestPermissions(ctx, Capabilities{Alert: true})
		require.NoError(t, err)
		assert.Equal(t, PermissionDenied, status)

		status, _ = c.RequestPermissions(ctx, Capabilities{Alert: true})
		assert.Equal(t, PermissionDenied, status)
		assert.Equal(t, 1, prompts)
	})
}

func TestSchedule_RequiresPermission(t *testing.T) {
	c := newTestCenter(t)
	_, err := c.Schedule(context.Background(), dailyRequest("med_42_0800", 8, 0))
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)
}

func TestSchedule_ReplacesSameIdentifier(t *testing.T) {
	ctx := context.Background()
	c := grantedCenter(t)

	_, err := c.Schedule(ctx, dailyRequest("med_42_0800", 8, 0))
	require.NoError(t, err)
	_, err = c.Schedule(ctx, dailyRequest("med_42_0800", 8, 0))
	require.NoError(t, err)

	scheduled, err := c.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "med_42_0800", scheduled[0].Identifier)
	assert.Equal(t, 8, scheduled[0].NextTrigger.Hour())
	assert.Equal(t, 0, scheduled[0].NextTrigger.Minute())
}

func TestSchedule_GeneratesIdentifier(t *testing.T) {
	c := grantedCenter(t)
	id, err := c.Schedule(context.Background(), dailyRequest("", 9, 15))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, ok := c.ScheduledRequestByID(id)
	assert.True(t, ok)
}

func TestSchedule_InvalidTriggers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	c := grantedCenter(t, WithClock(func() time.Time { return now }))

	_, err := c.Schedule(ctx, dailyRequest("bad", 24, 0))
	assert.ErrorIs(t, err, appErrors.ErrScheduling)

	past := Request{Identifier: "past", Trigger: Trigger{Date: now.Add(-time.Minute)}}
	_, err = c.Schedule(ctx, past)
	assert.ErrorIs(t, err, appErrors.ErrScheduling)

	_, err = c.Schedule(ctx, Request{Identifier: "empty"})
	assert.ErrorIs(t, err, appErrors.ErrScheduling)

	scheduled, _ := c.Scheduled(ctx)
	assert.Empty(t, scheduled)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	c := grantedCenter(t)

	_, err := c.Schedule(ctx, dailyRequest("med_42_0800", 8, 0))
	require.NoError(t, err)

	require.NoError(t, c.Cancel(ctx, "med_42_0800"))
	require.NoError(t, c.Cancel(ctx, "does-not-exist"))

	scheduled, _ := c.Scheduled(ctx)
	assert.Empty(t, scheduled)
}

func TestFire_DailyStaysScheduled(t *testing.T) {
	ctx := context.Background()
	p := &recordingPresenter{}
	c := grantedCenter(t, WithPresenter(p))

	_, err := c.Schedule(ctx, dailyRequest("med_42_0800", 8, 0))
	require.NoError(t, err)

	n, err := c.Fire(ctx, "med_42_0800")
	require.NoError(t, err)
	assert.Equal(t, "med_42_0800", n.Request.Identifier)
	assert.Equal(t, 1, p.count())

	_, ok := c.ScheduledRequestByID("med_42_0800")
	assert.True(t, ok)
	_, ok = c.PresentedByID("med_42_0800")
	assert.True(t, ok)
}

func TestFire_OneShotIsRemoved(t *testing.T) {
	ctx := context.Background()
	c := grantedCenter(t)

	req := Request{
		Identifier: "snooze_42_abc",
		Trigger:    Trigger{Date: time.Now().Add(time.Hour)},
	}
	_, err := c.Schedule(ctx, req)
	require.NoError(t, err)

	_, err = c.Fire(ctx, "snooze_42_abc")
	require.NoError(t, err)

	_, ok := c.ScheduledRequestByID("snooze_42_abc")
	assert.False(t, ok)

	_, err = c.Fire(ctx, "snooze_42_abc")
	assert.ErrorIs(t, err, appErrors.ErrScheduling)
}

func TestFire_PresenterErrorDoesNotFail(t *testing.T) {
	ctx := context.Background()
	p := &recordingPresenter{err: errors.New("push failed")}
	c := grantedCenter(t, WithPresenter(p))

	_, err := c.Schedule(ctx, dailyRequest("med_1_0700", 7, 0))
	require.NoError(t, err)
	_, err = c.Fire(ctx, "med_1_0700")
	assert.NoError(t, err)
}

func TestDismiss(t *testing.T) {
	ctx := context.Background()
	c := grantedCenter(t)

	for _, id := range []string{"med_1_0700", "med_1_1900"} {
		_, err := c.Schedule(ctx, dailyRequest(id, 7, 0))
		require.NoError(t, err)
		_, err = c.Fire(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, c.Dismiss(ctx, "med_1_0700"))
	presented, _ := c.Presented(ctx)
	require.Len(t, presented, 1)
	assert.Equal(t, "med_1_1900", presented[0].Request.Identifier)

	require.NoError(t, c.DismissAll(ctx))
	presented, _ = c.Presented(ctx)
	assert.Empty(t, presented)
}

func TestSetChannel_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestCenter(t)
	assert.True(t, c.RequiresChannels())

	ch := Channel{ID: "medicine-reminders", Name: "Medicine Reminders", Importance: ImportanceHigh}
	require.NoError(t, c.SetChannel(ctx, ch))
	require.NoError(t, c.SetChannel(ctx, ch))

	got, ok := c.Channel("medicine-reminders")
	require.True(t, ok)
	assert.Equal(t, ch, got)

	assert.Error(t, c.SetChannel(ctx, Channel{}))
}

func TestRequiresChannels_IOS(t *testing.T) {
	c := newTestCenter(t, WithPlatform("iOS"))
	assert.False(t, c.RequiresChannels())
	assert.Equal(t, "ios", c.Platform())
}

func TestResponseListeners(t *testing.T) {
	c := newTestCenter(t)

	got := make(chan Response, 2)
	sub := c.AddResponseListener(func(ctx context.Context, resp Response) {
		got <- resp
	})
	assert.Equal(t, 1, c.ListenerCount())

	ctx, cancel := context.WithCancel(context.Background())
	n := c.Respond(ctx, Response{ActionIdentifier: "TAKEN"})
	cancel()
	assert.Equal(t, 1, n)

	select {
	case resp := <-got:
		assert.Equal(t, "TAKEN", resp.ActionIdentifier)
	case <-time.After(time.Second):
		t.Fatal("listener was not called")
	}

	sub.Remove()
	sub.Remove()
	assert.Equal(t, 0, c.ListenerCount())
	assert.Equal(t, 0, c.Respond(context.Background(), Response{ActionIdentifier: "TAKEN"}))
}

func TestScheduled_SortedByIdentifier(t *testing.T) {
	ctx := context.Background()
	c := grantedCenter(t)

	for _, id := range []string{"med_2_0900", "med_1_0800", "med_1_2000"} {
		_, err := c.Schedule(ctx, dailyRequest(id, 8, 0))
		require.NoError(t, err)
	}
	scheduled, err := c.Scheduled(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(scheduled))
	for _, s := range scheduled {
		ids = append(ids, s.Identifier)
	}
	assert.Equal(t, "med_1_0800,med_1_2000,med_2_0900", strings.Join(ids, ","))
}
