package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/middleware"
	"rutaflow/internal/repository"
	"rutaflow/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// driverID returns the authenticated driver, set by middleware.DriverIdentity.
func driverID(c *gin.Context) string {
	return c.GetString(middleware.DriverIDKey)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrFareRequired),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, service.ErrEmptyImage):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrDriverExists),
		errors.Is(err, service.ErrShiftBusy):
		return http.StatusConflict

	// Model could not read the input
	case errors.Is(err, service.ErrUnreadableImage):
		return http.StatusUnprocessableEntity

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
