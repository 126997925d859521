package notifier

import (
	"context"
	"time"

	"medreminder/internal/domain/entity"
)

// PermissionStatus is the notification authorization state of the device.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Capabilities is the set of notification features requested from the user.
type Capabilities struct {
	Alert         bool `json:"allowAlert"`
	Badge         bool `json:"allowBadge"`
	Sound         bool `json:"allowSound"`
	CriticalAlert bool `json:"allowCriticalAlerts"`
	Provisional   bool `json:"provideAppNotificationSettings"`
	CarPlay       bool `json:"allowDisplayInCarPlay"`
	Announcements bool `json:"allowAnnouncements"`
}

// Prompter asks the user to grant notification access.
type Prompter func(ctx context.Context, caps Capabilities) PermissionStatus

// Importance controls how intrusively a channel's notifications are shown.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceLow
	ImportanceHigh
	ImportanceMax
)

// Channel is a delivery channel on platforms that require one.
type Channel struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Importance       Importance `json:"importance"`
	VibrationPattern []int      `json:"vibrationPattern,omitempty"`
	Sound            string     `json:"sound,omitempty"`
	EnableLights     bool       `json:"enableLights"`
	LightColor       string     `json:"lightColor,omitempty"`
	ShowBadge        bool       `json:"showBadge"`
}

// Action is a button shown on notifications of a category.
type Action struct {
	Identifier               string `json:"identifier"`
	ButtonTitle              string `json:"buttonTitle"`
	OpensAppToForeground     bool   `json:"opensAppToForeground"`
	IsDestructive            bool   `json:"isDestructive"`
	IsAuthenticationRequired bool   `json:"isAuthenticationRequired"`
}

// Category is a named set of actions attachable to a notification.
type Category struct {
	Identifier string   `json:"identifier"`
	Actions    []Action `json:"actions"`
}

// Content is what a delivered notification shows.
type Content struct {
	Title              string                     `json:"title"`
	Body               string                     `json:"body"`
	Data               entity.NotificationPayload `json:"data"`
	CategoryIdentifier string                     `json:"categoryIdentifier,omitempty"`
	Sound              string                     `json:"sound,omitempty"`
}

// Trigger describes when a request fires. A repeating trigger fires every day
// at Hour:Minute; otherwise it fires once at Date.
type Trigger struct {
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	Repeats   bool      `json:"repeats"`
	Date      time.Time `json:"date,omitzero"`
	ChannelID string    `json:"channelId,omitempty"`
}

// Request is a scheduled notification.
type Request struct {
	Identifier string  `json:"identifier"`
	Content    Content `json:"content"`
	Trigger    Trigger `json:"trigger"`
}

// Notification is a delivered request.
type Notification struct {
	Request Request   `json:"request"`
	Date    time.Time `json:"date"`
}

// Response is the user's interaction with a delivered notification.
type Response struct {
	ActionIdentifier string       `json:"actionIdentifier"`
	Notification     Notification `json:"notification"`
}

// ScheduledRequest is a live request together with its next firing time.
type ScheduledRequest struct {
	Request
	NextTrigger time.Time `json:"nextTrigger"`
}

// ResponseListener receives response events.
type ResponseListener func(ctx context.Context, resp Response)

// Presenter shows a delivered notification to the user.
type Presenter interface {
	Present(ctx context.Context, n Notification) error
}
