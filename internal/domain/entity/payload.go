package entity

// NotificationPayload is the data embedded in every reminder notification and
// handed back unmodified when the user responds to it.
type NotificationPayload struct {
	UserID          ID      `json:"userId"`
	HealthProductID ID      `json:"healthProductId"`
	MedicineName    string  `json:"medicineName,omitempty"`
	DoseQuantity    float64 `json:"doseQuantity,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	CreatedAt       string  `json:"createdAt"`      // RFC 3339, distinguishes repeated firings
	NotificationID  string  `json:"notificationId"` // identifier of the trigger that carries this payload
}

// Valid reports whether the fields required to log usage are present.
func (p NotificationPayload) Valid() bool {
	return p.UserID > 0 && p.HealthProductID > 0
}

// DisplayName returns the medicine name, or a placeholder when it is empty.
func (p NotificationPayload) DisplayName() string {
	if p.MedicineName == "" {
		return "Unknown"
	}
	return p.MedicineName
}
