// Package card_review serves the Leitner review loop: picking the next card
// for a user and recording the rating the user gave it.
package card_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
)

// NextCard is the card chosen for review together with its scheduling state.
// For a card the user has never reviewed the state is synthesized and has
// not been stored.
type NextCard struct {
	Card   *domain.Card
	State  *domain.CardReviewState
	Reason srs.SelectionReason
}

// ReviewResult is the card and its state after a review was recorded.
type ReviewResult struct {
	Card  *domain.Card
	State *domain.CardReviewState
}

// CardReviewService provides methods for reviewing cards using the Leitner
// schedule.
type CardReviewService interface {
	// GetNextCard picks the card the user should review next within scope.
	//
	// Returns:
	//   - (*NextCard, nil): the selected card and its state
	//   - (nil, ErrNoCardsDue): nothing qualifies
	//   - (nil, error wrapping domain.ErrValidation): the scope is malformed
	//   - (nil, error): any other error, typically from the database
	//
	// This method does not modify any data.
	GetNextCard(ctx context.Context, userID uuid.UUID, scope srs.ScopeRequest) (*NextCard, error)

	// SubmitReview records a rating for a card and reschedules it.
	//
	// The card must exist and be public. The state row is created on first
	// review. The whole read-modify-write runs inside one exclusive section
	// and one transaction per (user, card), so concurrent submissions for the
	// same card are applied one after another. Submitting twice advances
	// twice.
	//
	// Returns:
	//   - (*ReviewResult, nil): the card and its updated state
	//   - (nil, error wrapping domain.ErrValidation): the rating is unknown
	//   - (nil, ErrCardNotFound): the card does not exist or is not public
	//   - (nil, error): any other error, typically from the database
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		cardID int64,
		rating domain.Rating,
	) (*ReviewResult, error)
}

// Common error types for CardReviewService
var (
	// ErrNoCardsDue indicates that no card in the requested scope qualifies.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardNotFound indicates that the card does not exist or is not public.
	ErrCardNotFound = errors.New("card not found")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_next_card", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
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

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}

// NewGetNextCardError returns a new ServiceError for the get_next_card operation.
func NewGetNextCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_next_card",
		Message:   message,
		Err:       err,
	}
}
