package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/service/auth"
	"github.com/phrazzld/scry-srs/internal/service/card_review"
	"github.com/phrazzld/scry-srs/internal/service/progress"
	"github.com/phrazzld/scry-srs/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, progress.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

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
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, progress.ErrCardNotFound):
		return "Lesson not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	default:
		return "An unexpected error occurred"
	}
}

// ValidationFields extracts the field to message mapping carried by
// validation errors. It returns nil when err carries none.
func ValidationFields(err error) map[string]string {
	var many domain.ValidationErrors
	if errors.As(err, &many) && len(many) > 0 {
		return many.Fields()
	}

	var one *domain.ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return map[string]string{one.Field: one.Message}
	}
	return nil
}

// HandleAPIError writes the response for err: its mapped status code, a
// sanitized message and, for validation failures, the offending fields.
// defaultMessage replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMessage != "" {
		message = defaultMessage
	}

	var opts []shared.ResponseOption
	if fields := ValidationFields(err); fields != nil {
		opts = append(opts, shared.WithFields(fields))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
