package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

// SQLCardStore implements store.CardStore over the content tables.
type SQLCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLCardStore creates a new card store.
// If logger is nil, a default logger will be used.
func NewSQLCardStore(db store.DBTX, logger *slog.Logger) *SQLCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure SQLCardStore implements store.CardStore interface
var _ store.CardStore = (*SQLCardStore)(nil)

type cardRow struct {
	ID               int64   `db:"id"`
	Slug             string  `db:"slug"`
	Title            string  `db:"title"`
	AnswerExpress    string  `db:"answer_express"`
	Takeaway         string  `db:"takeaway"`
	KeyPoints        []byte  `db:"key_points"`
	CoverImageURL    *string `db:"cover_image_url"`
	CoverImageCredit *string `db:"cover_image_credit"`
}

func (r *cardRow) toDomain() (*domain.Card, error) {
	card := &domain.Card{
		ID:               r.ID,
		Slug:             r.Slug,
		Title:            r.Title,
		AnswerExpress:    r.AnswerExpress,
		Takeaway:         r.Takeaway,
		KeyPoints:        []string{},
		CoverImageURL:    r.CoverImageURL,
		CoverImageCredit: r.CoverImageCredit,
	}
	if len(r.KeyPoints) > 0 {
		if err := json.Unmarshal(r.KeyPoints, &card.KeyPoints); err != nil {
			return nil, fmt.Errorf("invalid key_points for card %d: %w", r.ID, err)
		}
	}
	return card, nil
}

// GetPublicByID implements store.CardStore.GetPublicByID
func (s *SQLCardStore) GetPublicByID(ctx context.Context, id int64) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		SELECT id, slug, title, answer_express, takeaway, key_points,
		       cover_image_url, cover_image_credit
		FROM cards
		WHERE id = ? AND is_public
	`)

	var row cardRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			log.Debug("card not found", slog.Int64("card_id", id))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return nil, store.NewStoreError("card", "get", "failed to get card", mapped)
	}

	card, err := row.toDomain()
	if err != nil {
		log.Error("failed to decode card", slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "get", "failed to decode card", err)
	}
	return card, nil
}

// ListPublicIDs implements store.CardStore.ListPublicIDs
func (s *SQLCardStore) ListPublicIDs(ctx context.Context) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids := []int64{}
	if err := sqlx.SelectContext(ctx, s.db, &ids, `SELECT id FROM cards WHERE is_public ORDER BY id`); err != nil {
		log.Error("failed to list public cards", slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "list", "failed to list public cards", MapError(err))
	}
	return ids, nil
}

// ListDeckCardIDs implements store.CardStore.ListDeckCardIDs
func (s *SQLCardStore) ListDeckCardIDs(ctx context.Context, userID uuid.UUID, deckIDs []int64) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT dc.card_id
		FROM deck_cards dc
		JOIN decks d ON d.id = dc.deck_id
		JOIN cards c ON c.id = dc.card_id
		WHERE d.user_id = ? AND d.type = ? AND c.is_public`
	args := []any{userID, string(domain.DeckTypeUser)}

	if len(deckIDs) > 0 {
		query += ` AND d.id IN (?)`
		args = append(args, deckIDs)
	}
	query += ` ORDER BY dc.card_id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build deck card query: %w", err)
	}

	ids := []int64{}
	if err := sqlx.SelectContext(ctx, s.db, &ids, s.db.Rebind(query), args...); err != nil {
		log.Error("failed to list deck cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("deck_count", len(deckIDs)))
		return nil, store.NewStoreError("deck", "list", "failed to list deck cards", MapError(err))
	}

	log.Debug("resolved deck cards",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", len(ids)))
	return ids, nil
}
