package service

import (
	"context"

	"medreminder/internal/infrastructure/notifier"
)

// ResponseDispatcher handles the user's response to a delivered reminder.
type ResponseDispatcher interface {
	// HandleResponse processes one response event. A second response for a
	// notification that is still being processed returns ErrDuplicateResponse.
	HandleResponse(ctx context.Context, resp notifier.Response) error
}
