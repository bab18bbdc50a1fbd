package sqlstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

const reviewStateColumns = `user_id, card_id, level, due_at, last_reviewed_at,
	reviews_count, last_rating, created_at, updated_at`

// SQLReviewStateStore implements store.ReviewStateStore.
type SQLReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLReviewStateStore creates a new review state store.
// If logger is nil, a default logger will be used.
func NewSQLReviewStateStore(db store.DBTX, logger *slog.Logger) *SQLReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure SQLReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*SQLReviewStateStore)(nil)

// ListByUser implements store.ReviewStateStore.ListByUser
func (s *SQLReviewStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CardReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT ` + reviewStateColumns + `
		FROM card_review_states
		WHERE user_id = ?
		ORDER BY due_at, card_id`)

	states := []domain.CardReviewState{}
	if err := sqlx.SelectContext(ctx, s.db, &states, query, userID); err != nil {
		log.Error("failed to list review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("card_review_state", "list", "failed to list review states", MapError(err))
	}

	for i := range states {
		normalizeState(&states[i])
	}
	return states, nil
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate
func (s *SQLReviewStateStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
) (*domain.CardReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(forUpdate(s.db, `SELECT `+reviewStateColumns+`
		FROM card_review_states
		WHERE user_id = ? AND card_id = ?`))

	var state domain.CardReviewState
	if err := sqlx.GetContext(ctx, s.db, &state, query, userID, cardID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrReviewStateNotFound
		}
		log.Error("failed to lock review state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("card_id", cardID))
		return nil, store.NewStoreError("card_review_state", "get", "failed to lock review state", mapped)
	}

	normalizeState(&state)
	return &state, nil
}

// CreateIfAbsent implements store.ReviewStateStore.CreateIfAbsent
func (s *SQLReviewStateStore) CreateIfAbsent(ctx context.Context, state *domain.CardReviewState) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return false, store.NewStoreError("card_review_state", "create", "invalid review state", errors.Join(store.ErrInvalidEntity, err))
	}

	query := s.db.Rebind(`
		INSERT INTO card_review_states (` + reviewStateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO NOTHING`)

	result, err := s.db.ExecContext(ctx, query,
		state.UserID,
		state.CardID,
		state.Level,
		state.DueAt.UTC(),
		utcOrNil(state.LastReviewedAt),
		state.ReviewsCount,
		string(state.LastRating),
		state.CreatedAt.UTC(),
		state.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to create review state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return false, store.NewStoreError("card_review_state", "create", "failed to create review state", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("card_review_state", "create", "failed to read rows affected", err)
	}

	if rows > 0 {
		log.Debug("review state created",
			slog.String("user_id", state.UserID.String()),
			slog.Int64("card_id", state.CardID))
	}
	return rows > 0, nil
}

// Update implements store.ReviewStateStore.Update
func (s *SQLReviewStateStore) Update(ctx context.Context, state *domain.CardReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return store.NewStoreError("card_review_state", "update", "invalid review state", errors.Join(store.ErrInvalidEntity, err))
	}

	query := s.db.Rebind(`
		UPDATE card_review_states
		SET level = ?, due_at = ?, last_reviewed_at = ?, reviews_count = ?,
		    last_rating = ?, updated_at = ?
		WHERE user_id = ? AND card_id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		state.Level,
		state.DueAt.UTC(),
		utcOrNil(state.LastReviewedAt),
		state.ReviewsCount,
		string(state.LastRating),
		state.UpdatedAt.UTC(),
		state.UserID,
		state.CardID,
	)
	if err != nil {
		log.Error("failed to update review state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID))
		return store.NewStoreError("card_review_state", "update", "failed to update review state", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrReviewStateNotFound)
}

// WithTx implements store.ReviewStateStore.WithTx
func (s *SQLReviewStateStore) WithTx(tx *sqlx.Tx) store.ReviewStateStore {
	return &SQLReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}

func normalizeState(s *domain.CardReviewState) {
	s.DueAt = s.DueAt.UTC()
	s.LastReviewedAt = utcOrNilPtr(s.LastReviewedAt)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
}
