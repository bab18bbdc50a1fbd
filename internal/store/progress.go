package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// ProgressStore defines the interface for lesson progress persistence.
type ProgressStore interface {
	// ListByUser returns all progress records of the user ordered by card id.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error)

	// GetForUpdate retrieves a record and, where the database supports it,
	// locks the row until the surrounding transaction ends.
	// Returns ErrProgressNotFound if nothing is stored yet.
	GetForUpdate(ctx context.Context, userID uuid.UUID, cardID int64) (*domain.LessonProgress, error)

	// Insert stores a new record.
	// Returns ErrProgressExists if a concurrent writer created it first; the
	// surrounding transaction stays usable in that case.
	Insert(ctx context.Context, p *domain.LessonProgress) error

	// Update overwrites an existing record.
	// Returns ErrProgressNotFound if there is no row to update.
	Update(ctx context.Context, p *domain.LessonProgress) error

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) ProgressStore
}
