package card_review_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/events"
	"github.com/phrazzld/scry-srs/internal/platform/sqlstore"
	"github.com/phrazzld/scry-srs/internal/service/card_review"
	"github.com/phrazzld/scry-srs/internal/testdb"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db      *sqlx.DB
	svc     card_review.CardReviewService
	clock   *fakeClock
	emitter *events.InMemoryEventEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	log := testdb.Logger()

	clock := &fakeClock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewStoreRecorder(sqlstore.NewSQLEventStore(db, log)))

	svc := card_review.NewCardReviewService(
		db,
		sqlstore.NewSQLCardStore(db, log),
		sqlstore.NewSQLReviewStateStore(db, log),
		srs.NewDefaultService(),
		log,
		card_review.WithClock(clock.Now),
		card_review.WithEmitter(emitter),
	)
	return &fixture{db: db, svc: svc, clock: clock, emitter: emitter}
}

func allCards(onlyDue bool) srs.ScopeRequest {
	return srs.ScopeRequest{Scope: srs.ScopeAllCards, OnlyDue: onlyDue}
}

func TestGetNextCard_UnseenCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	first := testdb.InsertCard(t, f.db, testdb.CardFixture{Title: "First", KeyPoints: []string{"a"}})
	testdb.InsertCard(t, f.db, testdb.CardFixture{Title: "Second"})

	next, err := f.svc.GetNextCard(ctx, user, allCards(true))
	require.NoError(t, err)
	assert.Equal(t, first, next.Card.ID)
	assert.Equal(t, "First", next.Card.Title)
	assert.Equal(t, []string{"a"}, next.Card.KeyPoints)
	assert.Equal(t, srs.ReasonUnseen, next.Reason)
	assert.Equal(t, 1, next.State.Level)
	assert.Equal(t, 0, next.State.ReviewsCount)
	assert.Nil(t, next.State.LastReviewedAt)
	assert.True(t, next.State.DueAt.Equal(f.clock.Now()))

	assert.Equal(t, 0, testdb.Count(t, f.db, "card_review_states", ""), "selection must not write")
}

func TestReviewLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	cardID := testdb.InsertCard(t, f.db, testdb.CardFixture{})

	result, err := f.svc.SubmitReview(ctx, user, cardID, domain.RatingKnow)
	require.NoError(t, err)
	assert.Equal(t, cardID, result.Card.ID)
	assert.Equal(t, 2, result.State.Level)
	assert.Equal(t, 1, result.State.ReviewsCount)
	assert.Equal(t, domain.RatingKnow, result.State.LastRating)
	assert.True(t, result.State.DueAt.Equal(f.clock.Now().AddDate(0, 0, 3)))
	require.NotNil(t, result.State.LastReviewedAt)
	assert.True(t, result.State.LastReviewedAt.Equal(f.clock.Now()))

	// Only card is scheduled in the future.
	_, err = f.svc.GetNextCard(ctx, user, allCards(true))
	assert.ErrorIs(t, err, card_review.ErrNoCardsDue)

	upcoming, err := f.svc.GetNextCard(ctx, user, allCards(false))
	require.NoError(t, err)
	assert.Equal(t, cardID, upcoming.Card.ID)
	assert.Equal(t, srs.ReasonUpcoming, upcoming.Reason)
	assert.Equal(t, 2, upcoming.State.Level)

	// Force it past due.
	_, err = f.db.Exec(f.db.Rebind(`UPDATE card_review_states SET due_at = ? WHERE card_id = ?`),
		f.clock.Now().Add(-time.Minute), cardID)
	require.NoError(t, err)

	due, err := f.svc.GetNextCard(ctx, user, allCards(true))
	require.NoError(t, err)
	assert.Equal(t, cardID, due.Card.ID)
	assert.Equal(t, srs.ReasonDue, due.Reason)
	assert.Equal(t, 2, due.State.Level)
}

func TestSubmitReview_NotIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	cardID := testdb.InsertCard(t, f.db, testdb.CardFixture{})

	_, err := f.svc.SubmitReview(ctx, user, cardID, domain.RatingKnow)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	second, err := f.svc.SubmitReview(ctx, user, cardID, domain.RatingKnow)
	require.NoError(t, err)

	assert.Equal(t, 3, second.State.Level)
	assert.Equal(t, 2, second.State.ReviewsCount)

	again, err := f.svc.SubmitReview(ctx, user, cardID, domain.RatingAgain)
	require.NoError(t, err)
	assert.Equal(t, 2, again.State.Level)
	assert.Equal(t, domain.RatingAgain, again.State.LastRating)
}

func TestSubmitReview_AgainAtLevelOne(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cardID := testdb.InsertCard(t, f.db, testdb.CardFixture{})

	result, err := f.svc.SubmitReview(context.Background(), uuid.New(), cardID, domain.RatingAgain)
	require.NoError(t, err)
	assert.Equal(t, 1, result.State.Level)
	assert.True(t, result.State.DueAt.Equal(f.clock.Now().AddDate(0, 0, 1)))
}

func TestSubmitReview_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	cardID := testdb.InsertCard(t, f.db, testdb.CardFixture{})
	private := testdb.InsertCard(t, f.db, testdb.CardFixture{Private: true})

	t.Run("invalid rating", func(t *testing.T) {
		_, err := f.svc.SubmitReview(ctx, user, cardID, domain.Rating("easy"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rating", verr.Field)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := f.svc.SubmitReview(ctx, user, 424242, domain.RatingKnow)
		assert.ErrorIs(t, err, card_review.ErrCardNotFound)
	})

	t.Run("private card", func(t *testing.T) {
		_, err := f.svc.SubmitReview(ctx, user, private, domain.RatingKnow)
		assert.ErrorIs(t, err, card_review.ErrCardNotFound)
	})

	assert.Equal(t, 0, testdb.Count(t, f.db, "card_review_states", ""))
}

func TestSubmitReview_ConcurrentReviewsSerialize(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	cardID := testdb.InsertCard(t, f.db, testdb.CardFixture{})

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitReview(ctx, user, cardID, domain.RatingKnow)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var state struct {
		Level        int `db:"level"`
		ReviewsCount int `db:"reviews_count"`
	}
	require.NoError(t, f.db.Get(&state, f.db.Rebind(
		`SELECT level, reviews_count FROM card_review_states WHERE user_id = ? AND card_id = ?`), user, cardID))
	assert.Equal(t, n, state.ReviewsCount)
	assert.Equal(t, 5, state.Level)
	assert.Equal(t, n, testdb.Count(t, f.db, "learning_events", "type = ?", string(domain.EventReviewSubmitted)))
}

func TestGetNextCard_Scopes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	ids := testdb.InsertCards(t, f.db, 4)
	deckA := testdb.InsertDeck(t, f.db, user, domain.DeckTypeUser, ids[2])
	deckB := testdb.InsertDeck(t, f.db, user, domain.DeckTypeUser, ids[3], ids[1])
	official := testdb.InsertDeck(t, f.db, user, domain.DeckTypeOfficial, ids[0])

	tests := []struct {
		name  string
		scope srs.ScopeRequest
		want  int64
	}{
		{"all cards", srs.ScopeRequest{Scope: srs.ScopeAllCards, OnlyDue: true}, ids[0]},
		{"all decks by default", srs.ScopeRequest{OnlyDue: true}, ids[1]},
		{"single deck", srs.ScopeRequest{Scope: srs.ScopeDeck, DeckID: &deckA, OnlyDue: true}, ids[2]},
		{"several decks", srs.ScopeRequest{Scope: srs.ScopeDecks, DeckIDs: []int64{deckA, deckB}, OnlyDue: true}, ids[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := f.svc.GetNextCard(ctx, user, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Card.ID)
		})
	}

	t.Run("official deck is not a user deck", func(t *testing.T) {
		_, err := f.svc.GetNextCard(ctx, user, srs.ScopeRequest{Scope: srs.ScopeDeck, DeckID: &official, OnlyDue: true})
		assert.ErrorIs(t, err, card_review.ErrNoCardsDue)
	})

	t.Run("user without decks", func(t *testing.T) {
		_, err := f.svc.GetNextCard(ctx, uuid.New(), srs.ScopeRequest{OnlyDue: true})
		assert.ErrorIs(t, err, card_review.ErrNoCardsDue)
	})

	t.Run("deck scope without deck id", func(t *testing.T) {
		_, err := f.svc.GetNextCard(ctx, user, srs.ScopeRequest{Scope: srs.ScopeDeck})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown scope", func(t *testing.T) {
		_, err := f.svc.GetNextCard(ctx, user, srs.ScopeRequest{Scope: "everything"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGetNextCard_DuePrecedesUnseen(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	ids := testdb.InsertCards(t, f.db, 2)

	_, err := f.svc.SubmitReview(ctx, user, ids[1], domain.RatingMedium)
	require.NoError(t, err)
	f.clock.Advance(48 * time.Hour)

	next, err := f.svc.GetNextCard(ctx, user, allCards(true))
	require.NoError(t, err)
	assert.Equal(t, ids[1], next.Card.ID)
	assert.Equal(t, srs.ReasonDue, next.Reason)
}
