package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/platform/sqlstore"
	"github.com/phrazzld/scry-srs/internal/store"
	"github.com/phrazzld/scry-srs/internal/testdb"
)

// newPgxMock returns a mock that sqlx treats as the pgx driver, so queries
// are rebound to $n placeholders and row locks are requested.
func newPgxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, store.DriverPostgres), mock
}

func TestGetForUpdate_LocksRowOnPostgres(t *testing.T) {
	db, mock := newPgxMock(t)
	user := uuid.New()
	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM card_review_states\s+WHERE user_id = \$1 AND card_id = \$2 FOR UPDATE`).
		WithArgs(user, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "card_id", "level", "due_at", "last_reviewed_at",
			"reviews_count", "last_rating", "created_at", "updated_at",
		}).AddRow(user.String(), int64(7), 3, at, nil, 4, "medium", at, at))

	mock.ExpectQuery(`FROM lesson_progress\s+WHERE user_id = \$1 AND card_id = \$2 FOR UPDATE`).
		WithArgs(user, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	state, err := sqlstore.NewSQLReviewStateStore(db, testdb.Logger()).GetForUpdate(context.Background(), user, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Level)
	assert.Equal(t, 4, state.ReviewsCount)

	_, err = sqlstore.NewSQLProgressStore(db, testdb.Logger()).GetForUpdate(context.Background(), user, 7)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_NoLockClauseOnSQLite(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	if db.DriverName() != store.DriverSQLite {
		t.Skip("sqlite only")
	}
	assert.False(t, store.SupportsRowLocks(db))

	_, err := sqlstore.NewSQLReviewStateStore(db, testdb.Logger()).GetForUpdate(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
}
