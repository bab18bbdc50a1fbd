package card_review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/events"
	"github.com/phrazzld/scry-srs/internal/platform/keylock"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	db         *sqlx.DB
	cards      store.CardStore
	states     store.ReviewStateStore
	srsService srs.Service
	locks      *keylock.Locker[store.RowKey]
	emitter    events.EventEmitter
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes the service.
type Option func(*cardReviewServiceImpl)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *cardReviewServiceImpl) { s.now = now }
}

// WithEmitter sends a learning event after every committed review.
func WithEmitter(e events.EventEmitter) Option {
	return func(s *cardReviewServiceImpl) { s.emitter = e }
}

// WithLocker shares a key lock with other services.
func WithLocker(l *keylock.Locker[store.RowKey]) Option {
	return func(s *cardReviewServiceImpl) { s.locks = l }
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	db *sqlx.DB,
	cards store.CardStore,
	states store.ReviewStateStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) CardReviewService {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		db:         db,
		cards:      cards,
		states:     states,
		srsService: srsService,
		emitter:    events.NopEmitter{},
		now:        time.Now,
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = keylock.New[store.RowKey]()
	}
	return s
}

// GetNextCard implements CardReviewService.GetNextCard.
func (s *cardReviewServiceImpl) GetNextCard(
	ctx context.Context,
	userID uuid.UUID,
	scope srs.ScopeRequest,
) (*NextCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	resolved, err := scope.Resolve()
	if err != nil {
		log.Debug("rejected next card scope",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	var candidates []int64
	if resolved.AllCards {
		candidates, err = s.cards.ListPublicIDs(ctx)
	} else {
		candidates, err = s.cards.ListDeckCardIDs(ctx, userID, resolved.DeckIDs)
	}
	if err != nil {
		log.Error("failed to resolve candidate cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("scope", string(resolved.Scope)))
		return nil, NewGetNextCardError("failed to resolve candidate cards", err)
	}

	if len(candidates) == 0 {
		log.Debug("scope has no cards",
			slog.String("user_id", userID.String()),
			slog.String("scope", string(resolved.Scope)))
		return nil, ErrNoCardsDue
	}

	states, err := s.states.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to load review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetNextCardError("failed to load review states", err)
	}

	selection, ok := s.srsService.SelectNext(srs.SelectionInput{
		UserID:       userID,
		CandidateIDs: candidates,
		States:       states,
		Now:          s.now().UTC(),
		OnlyDue:      resolved.OnlyDue,
	})
	if !ok {
		log.Debug("no cards due for review",
			slog.String("user_id", userID.String()),
			slog.Int("candidate_count", len(candidates)))
		return nil, ErrNoCardsDue
	}

	card, err := s.cards.GetPublicByID(ctx, selection.CardID)
	if err != nil {
		log.Error("failed to load selected card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", selection.CardID))
		return nil, NewGetNextCardError("failed to load selected card", err)
	}

	log.Debug("selected next card",
		slog.String("user_id", userID.String()),
		slog.Int64("card_id", card.ID),
		slog.String("reason", string(selection.Reason)))

	state := selection.State
	return &NextCard{Card: card, State: &state, Reason: selection.Reason}, nil
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	rating domain.Rating,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.Int64("card_id", cardID))

	if _, err := domain.ParseRating(string(rating)); err != nil {
		log.Warn("invalid review rating", slog.String("rating", string(rating)))
		return nil, err
	}

	card, err := s.cards.GetPublicByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Warn("card not found for review")
			return nil, ErrCardNotFound
		}
		return nil, NewSubmitReviewError("failed to get card", err)
	}

	unlock := s.locks.Lock(store.RowKey{UserID: userID, CardID: cardID})
	defer unlock()

	var updated *domain.CardReviewState
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		states := s.states.WithTx(tx)
		now := s.now().UTC()

		if _, err := states.CreateIfAbsent(ctx, domain.NewCardReviewState(userID, cardID, now)); err != nil {
			return err
		}

		current, err := states.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			return err
		}

		next, err := s.srsService.ApplyReview(current, rating, now)
		if err != nil {
			return err
		}

		if err := states.Update(ctx, next); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		log.Error("failed to submit review", slog.String("error", err.Error()))
		return nil, NewSubmitReviewError("failed to record review", err)
	}

	log.Debug("review recorded",
		slog.String("rating", string(rating)),
		slog.Int("level", updated.Level),
		slog.Int("reviews_count", updated.ReviewsCount))

	events.Emit(ctx, s.emitter, userID, "", domain.EventReviewSubmitted, &cardID, reviewPayload{
		Rating:       rating,
		Level:        updated.Level,
		DueAt:        updated.DueAt,
		ReviewsCount: updated.ReviewsCount,
	}, updated.UpdatedAt)

	return &ReviewResult{Card: card, State: updated}, nil
}

type reviewPayload struct {
	Rating       domain.Rating `json:"rating"`
	Level        int           `json:"level"`
	DueAt        time.Time     `json:"due_at"`
	ReviewsCount int           `json:"reviews_count"`
}
