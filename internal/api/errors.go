package api

import (
	"errors"
	"net/http"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// Problem titles for the status codes the API produces.
const (
	TitleValidationFailed    = "Validation Failed"
	TitleResourceNotFound    = "Resource Not Found"
	TitleConflict            = "Conflict"
	TitleTooManyRequests     = "Too Many Requests"
	TitleInternalServerError = "Internal Server Error"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrVersionConflict),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// ProblemTitle returns the problem-details title for a status code.
func ProblemTitle(status int) string {
	switch status {
	case http.StatusBadRequest:
		return TitleValidationFailed
	case http.StatusNotFound:
		return TitleResourceNotFound
	case http.StatusConflict:
		return TitleConflict
	case http.StatusTooManyRequests:
		return TitleTooManyRequests
	default:
		return TitleInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	// Validation errors keep their field-level message; it is written for
	// clients, not operators.
	case errors.As(err, &validationErr):
		return validationErr.Error()

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	case store.IsNotFoundError(err):
		return "Task not found"

	case errors.Is(err, service.ErrVersionConflict):
		return "Task has been modified by another request, please refresh and try again"

	case store.IsDuplicateError(err):
		return "Task already exists"

	default:
		return "An unexpected error occurred"
	}
}
