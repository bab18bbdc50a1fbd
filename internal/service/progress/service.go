// Package progress merges lesson progress reported by offline clients into
// the server copy.
//
// Clients send partial snapshots stamped with their own clock. The merge
// rules live in domain.MergeProgress; this package adds the card lookup,
// the per-(user, card) exclusive section and the transactions around it.
package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// ImportRequest is a batch of snapshots keyed by card id as text, as sent by
// clients that buffered progress while offline.
type ImportRequest struct {
	DeviceID string                          `json:"device_id"`
	Lessons  map[string]domain.ProgressDelta `json:"lessons"`
}

// ImportResult counts what an import did. Imported counts stored entries;
// Updated counts entries whose stored updated_at advanced, new records
// included.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// ProgressService reconciles lesson progress.
type ProgressService interface {
	// List returns every progress record of the user ordered by card id.
	List(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error)

	// Upsert merges one snapshot into the stored record, keeping the larger
	// time_ms, and returns the result.
	//
	// Returns:
	//   - (nil, error wrapping domain.ErrValidation): the delta is malformed
	//   - (nil, ErrCardNotFound): the card does not exist or is not public
	Upsert(
		ctx context.Context,
		userID uuid.UUID,
		cardID int64,
		delta domain.ProgressDelta,
	) (*domain.LessonProgress, error)

	// Import merges a batch of snapshots, adding time_ms to the stored value.
	// Every delta is validated before any is applied. Keys that are not
	// integers and cards that cannot be found are skipped. Each entry is
	// applied in its own transaction; an entry that fails to store is logged
	// and skipped without affecting the others.
	Import(ctx context.Context, userID uuid.UUID, req ImportRequest) (*ImportResult, error)
}

// Common error types for ProgressService
var (
	// ErrCardNotFound indicates that the card does not exist or is not public.
	ErrCardNotFound = errors.New("lesson not found")
)

// ServiceError wraps errors from the progress service with the failed operation.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(op, message string, err error) *ServiceError {
	return &ServiceError{Operation: op, Message: message, Err: err}
}
