package dto

import "medreminder/internal/domain/entity"

// MedicineRequest is the DTO for creating or updating a medicine.
type MedicineRequest struct {
	UserID            entity.ID `json:"userId" validate:"required,gt=0"`
	HealthProductName string    `json:"healthProductName" validate:"required,max=100"`
	TotalQuantity     float64   `json:"totalQuantity" validate:"gte=0"`
	AvailableQuantity *float64  `json:"availableQuantity,omitempty" validate:"omitempty,gte=0"`
	ThresholdQuantity float64   `json:"thresholdQuantity" validate:"gte=0"`
	DoseQuantity      float64   `json:"doseQuantity" validate:"gt=0"`
	Unit              string    `json:"unit" validate:"required"`
	ExpiryDate        string    `json:"expiryDate" validate:"required,datetime=2006-01-02"`
	ReminderTimes     []string  `json:"reminderTimes" validate:"dive,required"`
}

// ToHealthProductRequest converts the DTO to the remote API request body.
func (r MedicineRequest) ToHealthProductRequest() entity.HealthProductRequest {
	return entity.HealthProductRequest{
		UserID:            r.UserID,
		HealthProductName: r.HealthProductName,
		TotalQuantity:     r.TotalQuantity,
		AvailableQuantity: r.AvailableQuantity,
		ThresholdQuantity: r.ThresholdQuantity,
		DoseQuantity:      r.DoseQuantity,
		Unit:              r.Unit,
		ExpiryDate:        r.ExpiryDate,
		ReminderTimes:     r.ReminderTimes,
	}
}

// MedicineResponse is returned after a medicine is created or updated.
// Warning is set when the remote call succeeded but reminders could not be scheduled.
type MedicineResponse struct {
	Medicine   *entity.HealthProduct `json:"medicine"`
	TriggerIDs []string              `json:"triggerIds"`
	Warning    string                `json:"warning,omitempty"`
}
