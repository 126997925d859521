package handler

import (
	"fmt"
	"net/http"

	"medreminder/internal/application/dto"
	"medreminder/internal/application/service"
	"medreminder/internal/domain/entity"
	"medreminder/internal/infrastructure/notifier"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NotificationHandler exposes the notification lifecycle over HTTP.
type NotificationHandler struct {
	center        *notifier.Center
	notifications service.NotificationService
	scheduler     service.SchedulerService
	log           logger.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	center *notifier.Center,
	notifications service.NotificationService,
	scheduler service.SchedulerService,
	log logger.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		center:        center,
		notifications: notifications,
		scheduler:     scheduler,
		log:           log,
	}
}

// Initialize handles POST /api/v1/notifications/initialize.
func (h *NotificationHandler) Initialize(c echo.Context) error {
	if err := h.notifications.Initialize(c.Request().Context()); err != nil {
		h.log.Error("Failed to initialize notifications", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"initialized": true})
}

// ListScheduled handles GET /api/v1/notifications/scheduled.
func (h *NotificationHandler) ListScheduled(c echo.Context) error {
	list, err := h.scheduler.ListScheduled(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToScheduledNotificationResponseList(list))
}

// Respond handles POST /api/v1/notifications/responses. The event is handed
// to the response listeners and processed asynchronously.
func (h *NotificationHandler) Respond(c echo.Context) error {
	var resp notifier.Response
	if err := c.Bind(&resp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if resp.ActionIdentifier == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actionIdentifier is required")
	}
	if !h.notifications.IsInitialized() {
		return writeError(c, appErrors.ErrNotInitialized)
	}

	id := resp.Notification.Request.Identifier
	if id == "" {
		id = resp.Notification.Request.Content.Data.NotificationID
	}
	n := h.center.Respond(c.Request().Context(), resp)
	h.log.Info(fmt.Sprintf("Accepted %s response for %s", resp.ActionIdentifier, id))
	return c.JSON(http.StatusAccepted, dto.ResponseAccepted{Identifier: id, Listeners: n})
}

// ScheduleReminders handles POST /api/v1/medicines/:id/reminders.
func (h *NotificationHandler) ScheduleReminders(c echo.Context) error {
	id, ok := entity.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	var req dto.ScheduleRemindersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.HealthProductID = id

	ids, err := h.scheduler.ScheduleDailyReminders(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ScheduleRemindersResponse{TriggerIDs: ids})
}

// CancelReminders handles DELETE /api/v1/medicines/:id/reminders.
func (h *NotificationHandler) CancelReminders(c echo.Context) error {
	id, ok := entity.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	if err := h.scheduler.CancelAllRemindersForMedicine(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
