package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/domain/srs"
	"github.com/studyowl/studyowl-api/internal/generation"
	"github.com/studyowl/studyowl-api/internal/service/study"
	"github.com/studyowl/studyowl-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, study.ErrSessionNotFound):
		return http.StatusNotFound

	// Session state conflicts
	case errors.Is(err, study.ErrSessionActive),
		errors.Is(err, study.ErrNoActiveSession),
		errors.Is(err, study.ErrAlreadyAnswered),
		errors.Is(err, study.ErrEmptySubset):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, study.ErrIndexOutOfRange),
		errors.Is(err, study.ErrInvalidRetakeFilter),
		errors.Is(err, generation.ErrEmptySourceText):
		return http.StatusBadRequest

	// Generation errors
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Special cases
	case errors.Is(err, study.ErrNoCardsDue):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Not found errors
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, study.ErrSessionNotFound):
		return "No session exists for this deck"

	// Session state errors
	case errors.Is(err, study.ErrSessionActive):
		return "A session is already in progress"
	case errors.Is(err, study.ErrNoActiveSession):
		return "No active session"
	case errors.Is(err, study.ErrAlreadyAnswered):
		return "This card has already been answered"
	case errors.Is(err, study.ErrEmptySubset):
		return "No cards match the retake filter"
	case errors.Is(err, study.ErrIndexOutOfRange):
		return "Queue position out of range"
	case errors.Is(err, study.ErrInvalidRetakeFilter):
		return "Invalid retake filter"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, domain.ErrInvalidGrade):
		return "Grade must be between 1 and 5"
	case errors.Is(err, srs.ErrInvalidDays):
		return "Postpone days must be at least 1"

	// Generation errors
	case errors.Is(err, generation.ErrEmptySourceText):
		return "Source text is required"
	case errors.Is(err, generation.ErrContentBlocked):
		return "Content was rejected by the generation service"
	case errors.Is(err, generation.ErrInvalidConfig):
		return "Card generation is not configured"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Card generation failed"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'ReviewRequest.Grade' Error:Field validation for 'Grade' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
