package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/sqlstore"
	"github.com/phrazzld/scry-srs/internal/store"
	"github.com/phrazzld/scry-srs/internal/testdb"
)

func TestSQLReviewStateStore_Lifecycle(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	states := sqlstore.NewSQLReviewStateStore(db, testdb.Logger())
	ctx := context.Background()

	user := uuid.New()
	cardID := testdb.InsertCard(t, db, testdb.CardFixture{})
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	created, err := states.CreateIfAbsent(ctx, domain.NewCardReviewState(user, cardID, now))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = states.CreateIfAbsent(ctx, domain.NewCardReviewState(user, cardID, now.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created, "second create must not overwrite")

	var got *domain.CardReviewState
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		got, err = states.WithTx(tx).GetForUpdate(ctx, user, cardID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.True(t, got.DueAt.Equal(now))
	assert.Nil(t, got.LastReviewedAt)
	assert.Equal(t, domain.Rating(""), got.LastRating)
	assert.Equal(t, time.UTC, got.DueAt.Location())

	reviewed := now.Add(10 * time.Minute)
	got.Level = 2
	got.DueAt = reviewed.AddDate(0, 0, 3)
	got.LastReviewedAt = &reviewed
	got.ReviewsCount = 1
	got.LastRating = domain.RatingKnow
	got.UpdatedAt = reviewed
	require.NoError(t, states.Update(ctx, got))

	list, err := states.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Level)
	assert.Equal(t, 1, list[0].ReviewsCount)
	assert.Equal(t, domain.RatingKnow, list[0].LastRating)
	assert.True(t, list[0].DueAt.Equal(reviewed.AddDate(0, 0, 3)))
	require.NotNil(t, list[0].LastReviewedAt)
	assert.True(t, list[0].LastReviewedAt.Equal(reviewed))
	assert.True(t, list[0].CreatedAt.Equal(now))
}

func TestSQLReviewStateStore_NotFound(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	states := sqlstore.NewSQLReviewStateStore(db, testdb.Logger())
	ctx := context.Background()

	cardID := testdb.InsertCard(t, db, testdb.CardFixture{})

	_, err := states.GetForUpdate(ctx, uuid.New(), cardID)
	assert.ErrorIs(t, err, store.ErrReviewStateNotFound)

	err = states.Update(ctx, domain.NewCardReviewState(uuid.New(), cardID, time.Now()))
	assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
}

func TestSQLReviewStateStore_ListByUserOrdering(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	states := sqlstore.NewSQLReviewStateStore(db, testdb.Logger())
	ctx := context.Background()

	user := uuid.New()
	ids := testdb.InsertCards(t, db, 3)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Third card is due first; the other two share a due time.
	dues := []time.Time{base.Add(time.Hour), base.Add(time.Hour), base}
	for i, id := range ids {
		s := domain.NewCardReviewState(user, id, base)
		s.DueAt = dues[i]
		_, err := states.CreateIfAbsent(ctx, s)
		require.NoError(t, err)
	}
	_, err := states.CreateIfAbsent(ctx, domain.NewCardReviewState(uuid.New(), ids[0], base))
	require.NoError(t, err)

	list, err := states.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]},
		[]int64{list[0].CardID, list[1].CardID, list[2].CardID})
}

func TestSQLReviewStateStore_RejectsInvalidState(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	states := sqlstore.NewSQLReviewStateStore(db, testdb.Logger())

	s := domain.NewCardReviewState(uuid.New(), 1, time.Now())
	s.Level = 9

	_, err := states.CreateIfAbsent(context.Background(), s)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)
}
