package service

import "context"

// NotificationService owns the notification lifecycle: permission, delivery
// channel, reminder category and the response listener subscription.
type NotificationService interface {
	// Initialize prepares notifications once per process. Later calls return immediately.
	Initialize(ctx context.Context) error
	// IsInitialized reports whether Initialize has completed.
	IsInitialized() bool
	// Shutdown removes the response listener.
	Shutdown()
	// EnsurePermission requests notification access when it is not granted.
	EnsurePermission(ctx context.Context) error
	// EnsureDeliveryChannel registers the reminder channel on platforms that require one.
	EnsureDeliveryChannel(ctx context.Context) error
	// RegisterReminderCategory declares the TAKEN/MISSED(/SNOOZE) actions.
	RegisterReminderCategory(ctx context.Context) error
}
