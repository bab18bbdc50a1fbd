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

const progressColumns = `user_id, card_id, seen, completed, percent, time_ms,
	score_best, score_last, updated_at, last_seen_at`

// SQLProgressStore implements store.ProgressStore.
type SQLProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLProgressStore creates a new progress store.
// If logger is nil, a default logger will be used.
func NewSQLProgressStore(db store.DBTX, logger *slog.Logger) *SQLProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure SQLProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*SQLProgressStore)(nil)

// ListByUser implements store.ProgressStore.ListByUser
func (s *SQLProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT ` + progressColumns + `
		FROM lesson_progress
		WHERE user_id = ?
		ORDER BY card_id`)

	records := []domain.LessonProgress{}
	if err := sqlx.SelectContext(ctx, s.db, &records, query, userID); err != nil {
		log.Error("failed to list progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("lesson_progress", "list", "failed to list progress", MapError(err))
	}

	for i := range records {
		normalizeProgress(&records[i])
	}
	return records, nil
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
func (s *SQLProgressStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
) (*domain.LessonProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(forUpdate(s.db, `SELECT `+progressColumns+`
		FROM lesson_progress
		WHERE user_id = ? AND card_id = ?`))

	var p domain.LessonProgress
	if err := sqlx.GetContext(ctx, s.db, &p, query, userID, cardID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to lock progress",
			slog.String("error", err.Error()),
			slog.Int64("card_id", cardID))
		return nil, store.NewStoreError("lesson_progress", "get", "failed to lock progress", mapped)
	}

	normalizeProgress(&p)
	return &p, nil
}

// Insert implements store.ProgressStore.Insert
func (s *SQLProgressStore) Insert(ctx context.Context, p *domain.LessonProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		INSERT INTO lesson_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO NOTHING`)

	result, err := s.db.ExecContext(ctx, query,
		p.UserID,
		p.CardID,
		p.Seen,
		p.Completed,
		p.Percent,
		p.TimeMs,
		p.ScoreBest,
		p.ScoreLast,
		p.UpdatedAt.UTC(),
		utcOrNil(p.LastSeenAt),
	)
	if err != nil {
		log.Error("failed to insert progress",
			slog.String("error", err.Error()),
			slog.Int64("card_id", p.CardID))
		return store.NewStoreError("lesson_progress", "create", "failed to insert progress", MapError(err))
	}

	// Zero rows means a concurrent writer won the insert.
	return CheckRowsAffected(result, store.ErrProgressExists)
}

// Update implements store.ProgressStore.Update
func (s *SQLProgressStore) Update(ctx context.Context, p *domain.LessonProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		UPDATE lesson_progress
		SET seen = ?, completed = ?, percent = ?, time_ms = ?,
		    score_best = ?, score_last = ?, updated_at = ?, last_seen_at = ?
		WHERE user_id = ? AND card_id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		p.Seen,
		p.Completed,
		p.Percent,
		p.TimeMs,
		p.ScoreBest,
		p.ScoreLast,
		p.UpdatedAt.UTC(),
		utcOrNil(p.LastSeenAt),
		p.UserID,
		p.CardID,
	)
	if err != nil {
		log.Error("failed to update progress",
			slog.String("error", err.Error()),
			slog.Int64("card_id", p.CardID))
		return store.NewStoreError("lesson_progress", "update", "failed to update progress", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// WithTx implements store.ProgressStore.WithTx
func (s *SQLProgressStore) WithTx(tx *sqlx.Tx) store.ProgressStore {
	return &SQLProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

func normalizeProgress(p *domain.LessonProgress) {
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.LastSeenAt = utcOrNilPtr(p.LastSeenAt)
}
