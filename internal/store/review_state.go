package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// ReviewStateStore defines the interface for Leitner state persistence.
type ReviewStateStore interface {
	// ListByUser returns every stored state of the user, ordered by due_at then card id.
	// It takes no locks.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CardReviewState, error)

	// GetForUpdate retrieves a state and, where the database supports it,
	// locks the row until the surrounding transaction ends.
	// Returns ErrReviewStateNotFound if the user never reviewed the card.
	GetForUpdate(ctx context.Context, userID uuid.UUID, cardID int64) (*domain.CardReviewState, error)

	// CreateIfAbsent inserts state unless a row already exists for its key.
	// It reports whether a row was inserted and never fails on conflict.
	CreateIfAbsent(ctx context.Context, state *domain.CardReviewState) (bool, error)

	// Update overwrites an existing state.
	// Returns ErrReviewStateNotFound if there is no row to update.
	Update(ctx context.Context, state *domain.CardReviewState) error

	// WithTx returns a new ReviewStateStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) ReviewStateStore
}
