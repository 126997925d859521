package entity

// HealthProductRequest is the body sent to create or update a medicine on the remote API.
type HealthProductRequest struct {
	UserID            ID       `json:"userId"`
	HealthProductName string   `json:"healthProductName"`
	TotalQuantity     float64  `json:"totalQuantity"`
	AvailableQuantity *float64 `json:"availableQuantity,omitempty"`
	ThresholdQuantity float64  `json:"thresholdQuantity"`
	DoseQuantity      float64  `json:"doseQuantity"`
	Unit              string   `json:"unit"`
	ExpiryDate        string   `json:"expiryDate"`
	ReminderTimes     []string `json:"reminderTimes"`
}

// HealthProduct is the remote medicine record.
type HealthProduct struct {
	HealthProductID   ID       `json:"healthProductId"`
	HealthProductName string   `json:"healthProductName"`
	TotalQuantity     float64  `json:"totalQuantity"`
	AvailableQuantity float64  `json:"availableQuantity"`
	ThresholdQuantity float64  `json:"thresholdQuantity"`
	DoseQuantity      float64  `json:"doseQuantity"`
	Unit              string   `json:"unit"`
	ExpiryDate        string   `json:"expiryDate"`
	ReminderTimes     []string `json:"reminderTimes"`
	CreatedAt         string   `json:"createdAt,omitempty"`
}

// UsageLogEntry records whether a dose was taken. It is owned by the remote API.
type UsageLogEntry struct {
	UserID          ID     `json:"userId"`
	HealthProductID ID     `json:"healthProductId"`
	IsTaken         bool   `json:"isTaken"`
	CreatedAt       string `json:"createdAt"`
}
