package entity

import (
	"fmt"
	"strconv"
	"strings"

	"medreminder/internal/domain/constant"
	appErrors "medreminder/internal/pkg/errors"
)

// DoseTime is a 24-hour clock time at which a dose is due.
type DoseTime struct {
	Hour   int
	Minute int
}

// ParseDoseTime parses "HH:MM". Single-digit fields ("8:05") are accepted;
// hour must be in [0,23] and minute in [0,59].
func ParseDoseTime(s string) (DoseTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return DoseTime{}, fmt.Errorf("%w: %q is not HH:MM", appErrors.ErrInvalidScheduleInput, s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return DoseTime{}, fmt.Errorf("%w: %q has a non-numeric hour", appErrors.ErrInvalidScheduleInput, s)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return DoseTime{}, fmt.Errorf("%w: %q has a non-numeric minute", appErrors.ErrInvalidScheduleInput, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return DoseTime{}, fmt.Errorf("%w: %q is out of range", appErrors.ErrInvalidScheduleInput, s)
	}
	return DoseTime{Hour: hour, Minute: minute}, nil
}

func (t DoseTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ScheduledTrigger is one repeating daily reminder for a medicine dose time.
type ScheduledTrigger struct {
	ID      string              `json:"triggerId"`
	Hour    int                 `json:"hour"`
	Minute  int                 `json:"minute"`
	Repeats bool                `json:"repeats"`
	Payload NotificationPayload `json:"payload"`
}

// TriggerID derives the identifier of the daily trigger for a medicine and
// dose time. The same inputs always give the same ID, so rescheduling a dose
// time replaces the existing trigger instead of adding another one.
func TriggerID(healthProductID ID, t DoseTime) string {
	return fmt.Sprintf("med_%d_%02d%02d", healthProductID, t.Hour, t.Minute)
}

// DailyTriggerPrefix returns the identifier prefix of the daily triggers of a medicine.
func DailyTriggerPrefix(healthProductID ID) string {
	return fmt.Sprintf("med_%d_", healthProductID)
}

// SnoozeTriggerPrefix returns the identifier prefix of one-shot snooze
// triggers for a medicine.
func SnoozeTriggerPrefix(healthProductID ID) string {
	return fmt.Sprintf("snooze_%d_", healthProductID)
}

// TriggerIndexKey is the key-value key under which a medicine's trigger IDs are stored.
func TriggerIndexKey(healthProductID ID) string {
	return constant.TriggerIndexKeyPrefix + healthProductID.String()
}
