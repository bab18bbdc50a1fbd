package testdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/platform/database"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// PostgresURLEnv names the variable that switches tests to PostgreSQL.
const PostgresURLEnv = "SCRY_TEST_DB_URL"

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a migrated database private to t.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		URL:    "file:" + filepath.Join(t.TempDir(), "scry.db"),
	}
	if url := os.Getenv(PostgresURLEnv); url != "" {
		cfg = config.DatabaseConfig{
			Driver:          "postgres",
			URL:             url,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := database.Open(ctx, cfg, Logger())
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	migrator, err := database.NewMigrator(db, Logger())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, migrator.Up(ctx), "Failed to run migrations")

	if cfg.Driver == "postgres" {
		truncate(t, db)
	}

	return db
}

func truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE learning_events, lesson_progress, card_review_states,
		deck_cards, decks, cards RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}

// Count returns the number of rows in table matching the optional where clause.
func Count(t *testing.T, db *sqlx.DB, table, where string, args ...any) int {
	t.Helper()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(query), args...))
	return n
}
