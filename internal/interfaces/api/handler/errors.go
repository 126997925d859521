package handler

import (
	"errors"
	"net/http"

	appErrors "medreminder/internal/pkg/errors"

	"github.com/labstack/echo/v4"
)

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrInvalidScheduleInput),
		errors.Is(err, appErrors.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrPermissionDenied),
		errors.Is(err, appErrors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, appErrors.ErrHealthProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrDuplicateResponse):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, appErrors.ErrRemoteAPI),
		errors.Is(err, appErrors.ErrRemoteLogFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
}

// bindAndValidate binds the request body into v and runs the echo validator.
// The returned error is an *echo.HTTPError ready to be returned by the handler.
func bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
