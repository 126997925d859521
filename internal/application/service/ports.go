package service

import (
	"context"

	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
)

// NotificationCenter is the device notification subsystem the services drive.
// *notifier.Center implements it.
type NotificationCenter interface {
	GetPermissions(ctx context.Context) (notifier.PermissionStatus, error)
	RequestPermissions(ctx context.Context, caps notifier.Capabilities) (notifier.PermissionStatus, error)
	RequiresChannels() bool
	SetChannel(ctx context.Context, ch notifier.Channel) error
	SetCategory(ctx context.Context, cat notifier.Category) error
	Schedule(ctx context.Context, req notifier.Request) (string, error)
	Cancel(ctx context.Context, identifier string) error
	Scheduled(ctx context.Context) ([]notifier.ScheduledRequest, error)
	Dismiss(ctx context.Context, identifier string) error
	DismissAll(ctx context.Context) error
	AddResponseListener(fn notifier.ResponseListener) *notifier.Subscription
}

// HealthAPI is the remote health-product and medicine-log API.
// *healthapi.Client implements it.
type HealthAPI interface {
	CreateHealthProduct(ctx context.Context, req entity.HealthProductRequest) (*entity.HealthProduct, error)
	UpdateHealthProduct(ctx context.Context, id entity.ID, req entity.HealthProductRequest) (*entity.HealthProduct, error)
	GetHealthProduct(ctx context.Context, id entity.ID) (*entity.HealthProduct, error)
	DeleteHealthProduct(ctx context.Context, id entity.ID) error
	RecordMedicineUsage(ctx context.Context, id entity.ID) error
	AddMedicineUsageLog(ctx context.Context, entry entity.UsageLogEntry) (bool, error)
}

// Alerter shows a user-visible alert.
type Alerter interface {
	Alert(ctx context.Context, title, message string)
}
