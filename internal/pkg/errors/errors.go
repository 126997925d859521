package errors

import "errors"

// Notification lifecycle errors
var (
	ErrPermissionDenied     = errors.New("notification permission denied")        // User declined OS notification access
	ErrInvalidScheduleInput = errors.New("invalid dose time")                     // Dose time failed HH:MM parsing or range check
	ErrRemoteLogFailure     = errors.New("failed to record medicine usage log")   // Usage log creation failed after retries
	ErrRemoteStockFailure   = errors.New("usage recorded but stock not updated") // Stock decrement failed after a successful log
	ErrDuplicateResponse    = errors.New("notification already being processed") // Second response for an in-flight notification
	ErrMalformedPayload     = errors.New("malformed notification payload")        // Missing userId or healthProductId
)

// Remote health-product API errors
var (
	ErrInsufficientQuantity  = errors.New("insufficient quantity available for dose")
	ErrHealthProductNotFound = errors.New("medicine not found")
	ErrHealthProductExpired  = errors.New("medicine expired")
	ErrRemoteAPI             = errors.New("health API request failed")
)

// Infrastructure errors
var (
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrScheduling        = errors.New("scheduling failed")
	ErrNotAuthorized     = errors.New("notifications not authorized")
	ErrNotInitialized    = errors.New("notification service not initialized")
)
