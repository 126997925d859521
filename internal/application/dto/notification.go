package dto

import (
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
)

// ScheduleRemindersRequest is the DTO for scheduling the daily reminders of a medicine.
type ScheduleRemindersRequest struct {
	UserID          entity.ID `json:"userId" validate:"required,gt=0"`
	HealthProductID entity.ID `json:"healthProductId"`
	MedicineName    string    `json:"medicineName"`
	DoseQuantity    float64   `json:"doseQuantity" validate:"gte=0"`
	Unit            string    `json:"unit"`
	ReminderTimes   []string  `json:"reminderTimes"`
}

// ScheduleRemindersResponse lists the trigger IDs that were scheduled.
type ScheduleRemindersResponse struct {
	TriggerIDs []string `json:"triggerIds"`
}

// ScheduledNotificationResponse describes one live trigger.
type ScheduledNotificationResponse struct {
	Identifier  string                     `json:"identifier"`
	Title       string                     `json:"title"`
	Body        string                     `json:"body"`
	Hour        int                        `json:"hour"`
	Minute      int                        `json:"minute"`
	Repeats     bool                       `json:"repeats"`
	Date        *time.Time                 `json:"date,omitempty"`
	NextTrigger *time.Time                 `json:"nextTrigger,omitempty"`
	Payload     entity.NotificationPayload `json:"payload"`
}

// ToScheduledNotificationResponse converts a live request to its DTO.
func ToScheduledNotificationResponse(r notifier.ScheduledRequest) ScheduledNotificationResponse {
	resp := ScheduledNotificationResponse{
		Identifier: r.Identifier,
		Title:      r.Content.Title,
		Body:       r.Content.Body,
		Hour:       r.Trigger.Hour,
		Minute:     r.Trigger.Minute,
		Repeats:    r.Trigger.Repeats,
		Payload:    r.Content.Data,
	}
	if !r.Trigger.Date.IsZero() {
		d := r.Trigger.Date
		resp.Date = &d
	}
	if !r.NextTrigger.IsZero() {
		n := r.NextTrigger
		resp.NextTrigger = &n
	}
	return resp
}

// ToScheduledNotificationResponseList converts a slice of live requests.
func ToScheduledNotificationResponseList(list []notifier.ScheduledRequest) []ScheduledNotificationResponse {
	out := make([]ScheduledNotificationResponse, len(list))
	for i, r := range list {
		out[i] = ToScheduledNotificationResponse(r)
	}
	return out
}

// ResponseAccepted is returned when a response event has been handed to the listeners.
type ResponseAccepted struct {
	Identifier string `json:"identifier"`
	Listeners  int    `json:"listeners"`
}
