package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
	"medreminder/internal/infrastructure/scheduler"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
)

type mockHealthAPI struct {
	mock.Mock
}

func (m *mockHealthAPI) CreateHealthProduct(ctx context.Context, req entity.HealthProductRequest) (*entity.HealthProduct, error) {
	args := m.Called(ctx, req)
	hp, _ := args.Get(0).(*entity.HealthProduct)
	return hp, args.Error(1)
}

func (m *mockHealthAPI) UpdateHealthProduct(ctx context.Context, id entity.ID, req entity.HealthProductRequest) (*entity.HealthProduct, error) {
	args := m.Called(ctx, id, req)
	hp, _ := args.Get(0).(*entity.HealthProduct)
	return hp, args.Error(1)
}

func (m *mockHealthAPI) GetHealthProduct(ctx context.Context, id entity.ID) (*entity.HealthProduct, error) {
	args := m.Called(ctx, id)
	hp, _ := args.Get(0).(*entity.HealthProduct)
	return hp, args.Error(1)
}

func (m *mockHealthAPI) DeleteHealthProduct(ctx context.Context, id entity.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockHealthAPI) RecordMedicineUsage(ctx context.Context, id entity.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockHealthAPI) AddMedicineUsageLog(ctx context.Context, entry entity.UsageLogEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

type alert struct {
	title   string
	message string
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (a *recordingAlerter) Alert(ctx context.Context, title, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert{title: title, message: message})
}

func (a *recordingAlerter) titles() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.alerts))
	for _, al := range a.alerts {
		out = append(out, al.title)
	}
	return out
}

type memIndex struct {
	mu      sync.Mutex
	lists   map[entity.ID][]string
	saveErr error
	loadErr error
}

func newMemIndex() *memIndex {
	return &memIndex{lists: make(map[entity.ID][]string)}
}

func (m *memIndex) Load(ctx context.Context, id entity.ID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]string(nil), m.lists[id]...), nil
}

func (m *memIndex) Save(ctx context.Context, id entity.ID, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if len(ids) == 0 {
		delete(m.lists, id)
		return nil
	}
	m.lists[id] = append([]string(nil), ids...)
	return nil
}

func (m *memIndex) Delete(ctx context.Context, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, id)
	return nil
}

func (m *memIndex) has(id entity.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lists[id]
	return ok
}

type testStack struct {
	center        *notifier.Center
	index         *memIndex
	api           *mockHealthAPI
	alerts        *recordingAlerter
	notifications NotificationService
	scheduler     SchedulerService
	reconciler    UsageReconciler
	dispatcher    ResponseDispatcher
}

func newTestStack(t *testing.T, centerOpts ...notifier.Option) *testStack {
	t.Helper()
	log := logger.Nop()
	m := metrics.New(prometheus.NewRegistry())

	center := notifier.NewCenter(scheduler.NewScheduler(log, time.UTC), log, centerOpts...)
	t.Cleanup(center.Stop)

	st := &testStack{
		center: center,
		index:  newMemIndex(),
		api:    &mockHealthAPI{},
		alerts: &recordingAlerter{},
	}
	st.notifications = NewNotificationService(center, st.alerts, NotificationSettings{SnoozeEnabled: true, DismissOnStartup: true}, log)
	st.scheduler = NewSchedulerService(center, st.index, st.notifications, m, 5*time.Minute, log)
	st.reconciler = NewUsageReconciler(st.api, m, 3, time.Millisecond, log)
	st.dispatcher = NewResponseDispatcher(center, st.notifications, st.scheduler, st.reconciler, st.alerts, m, log)
	return st
}

func (st *testStack) scheduledIDs(t *testing.T) []string {
	t.Helper()
	list, err := st.center.Scheduled(context.Background())
	if err != nil {
		t.Fatalf("Scheduled: %v", err)
	}
	ids := make([]string, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.Identifier)
	}
	return ids
}

func response(action, id string, userID, healthProductID entity.ID) notifier.Response {
	return notifier.Response{
		ActionIdentifier: action,
		Notification: notifier.Notification{
			Request: notifier.Request{
				Identifier: id,
				Content: notifier.Content{
					Data: entity.NotificationPayload{
						UserID:          userID,
						HealthProductID: healthProductID,
						MedicineName:    "Aspirin",
						NotificationID:  id,
					},
				},
			},
		},
	}
}

func usageEntry(userID, healthProductID entity.ID, isTaken bool) interface{} {
	return mock.MatchedBy(func(e entity.UsageLogEntry) bool {
		return e.UserID == userID && e.HealthProductID == healthProductID && e.IsTaken == isTaken && e.CreatedAt != ""
	})
}
