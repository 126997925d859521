package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medreminder/internal/domain/constant"
	"medreminder/internal/infrastructure/notifier"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
)

// reminderCapabilities is requested from the user. Platforms ignore the
// capabilities they do not support.
var reminderCapabilities = notifier.Capabilities{
	Alert:         true,
	Badge:         true,
	Sound:         true,
	CriticalAlert: true,
	Provisional:   true,
	CarPlay:       true,
	Announcements: true,
}

// NotificationSettings configures NotificationService.
type NotificationSettings struct {
	SnoozeEnabled    bool
	DismissOnStartup bool
	// ResponseTimeout bounds the handling of one response event. Zero means no limit.
	ResponseTimeout time.Duration
}

type notificationService struct {
	center   NotificationCenter
	alerter  Alerter
	log      logger.Logger
	settings NotificationSettings

	// Set after construction by the response dispatcher (dependency injection workaround).
	handleResponseFunc func(ctx context.Context, resp notifier.Response) error

	mu           sync.Mutex
	initialized  bool
	subscription *notifier.Subscription
}

// NewNotificationService creates a new instance of NotificationService implementation.
func NewNotificationService(
	center NotificationCenter,
	alerter Alerter,
	settings NotificationSettings,
	log logger.Logger,
) NotificationService {
	return &notificationService{
		center:   center,
		alerter:  alerter,
		log:      log,
		settings: settings,
	}
}

// SetResponseHandler sets the function that receives every response event.
func (s *notificationService) SetResponseHandler(handler func(ctx context.Context, resp notifier.Response) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handleResponseFunc = handler
}

func (s *notificationService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.log.Info("Initializing notification service...")

	if err := s.EnsurePermission(ctx); err != nil {
		return err
	}
	if err := s.EnsureDeliveryChannel(ctx); err != nil {
		return err
	}
	if err := s.RegisterReminderCategory(ctx); err != nil {
		return err
	}

	if s.subscription != nil {
		s.subscription.Remove()
	}
	s.subscription = s.center.AddResponseListener(s.onResponse)

	if s.settings.DismissOnStartup {
		if err := s.center.DismissAll(ctx); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to dismiss delivered notifications: %v", err))
		}
	}

	s.initialized = true
	s.log.Info("Notification service initialized.")
	return nil
}

func (s *notificationService) onResponse(ctx context.Context, resp notifier.Response) {
	s.mu.Lock()
	handler := s.handleResponseFunc
	s.mu.Unlock()

	if handler == nil {
		s.log.Error("Response handler function is not set in NotificationService", nil)
		return
	}
	if s.settings.ResponseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ResponseTimeout)
		defer cancel()
	}
	// Errors are logged and alerted by the handler itself.
	_ = handler(ctx, resp)
}

func (s *notificationService) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *notificationService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscription != nil {
		s.subscription.Remove()
		s.subscription = nil
	}
	s.initialized = false
	s.log.Info("Notification service shut down.")
}

func (s *notificationService) EnsurePermission(ctx context.Context) error {
	status, err := s.center.GetPermissions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrPermissionDenied, err)
	}
	if status == notifier.PermissionGranted {
		return nil
	}

	status, err = s.center.RequestPermissions(ctx, reminderCapabilities)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrPermissionDenied, err)
	}
	if status != notifier.PermissionGranted {
		s.log.Warn("Notification permission was not granted")
		s.alerter.Alert(ctx, "Permission Required", "Please enable notifications to receive medicine reminders.")
		return appErrors.ErrPermissionDenied
	}
	return nil
}

func (s *notificationService) EnsureDeliveryChannel(ctx context.Context) error {
	if !s.center.RequiresChannels() {
		return nil
	}
	err := s.center.SetChannel(ctx, notifier.Channel{
		ID:               constant.ChannelMedicineReminders,
		Name:             "Medicine Reminders",
		Description:      "Reminders to take your medicine",
		Importance:       notifier.ImportanceHigh,
		VibrationPattern: []int{0, 250, 250, 250},
		Sound:            constant.SoundDefault,
		EnableLights:     true,
		LightColor:       "#FF0000",
		ShowBadge:        true,
	})
	if err != nil {
		s.log.Error("Failed to register notification channel", err)
		return err
	}
	return nil
}

func (s *notificationService) RegisterReminderCategory(ctx context.Context) error {
	actions := []notifier.Action{
		{
			Identifier:  constant.ActionTaken.String(),
			ButtonTitle: "✅ Taken",
		},
		{
			Identifier:    constant.ActionMissed.String(),
			ButtonTitle:   "❌ Missed",
			IsDestructive: true,
		},
	}
	if s.settings.SnoozeEnabled {
		actions = append(actions, notifier.Action{
			Identifier:  constant.ActionSnooze.String(),
			ButtonTitle: "⏰ Snooze 5 min",
		})
	}

	err := s.center.SetCategory(ctx, notifier.Category{
		Identifier: constant.CategoryMedicineReminder,
		Actions:    actions,
	})
	if err != nil {
		s.log.Error("Failed to register reminder category", err)
		return err
	}
	return nil
}
