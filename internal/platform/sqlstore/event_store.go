package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

// SQLEventStore implements store.EventStore.
type SQLEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLEventStore creates a new learning event store.
func NewSQLEventStore(db store.DBTX, logger *slog.Logger) *SQLEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

var _ store.EventStore = (*SQLEventStore)(nil)

// Create implements store.EventStore.Create
func (s *SQLEventStore) Create(ctx context.Context, event *domain.LearningEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}

	query := s.db.Rebind(`
		INSERT INTO learning_events (id, user_id, device_id, type, card_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.DeviceID,
		string(event.Type),
		event.CardID,
		payload,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to record learning event",
			slog.String("error", err.Error()),
			slog.String("type", string(event.Type)))
		return store.NewStoreError("learning_event", "create", "failed to record event", MapError(err))
	}

	return nil
}

// DeleteOlderThan implements store.EventStore.DeleteOlderThan
func (s *SQLEventStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM learning_events WHERE created_at < ?`)

	result, err := s.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		log.Error("failed to purge learning events",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, store.NewStoreError("learning_event", "delete", "failed to purge events", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("learning_event", "delete", "failed to read rows affected", err)
	}
	return n, nil
}
