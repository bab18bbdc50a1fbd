package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/store"
)

func init() {
	// sqlx only knows the cgo driver name; modernc uses "?" placeholders too.
	sqlx.BindDriver(store.DriverSQLite, sqlx.QUESTION)
}

// sqlitePragmas are appended to sqlite DSNs that do not set pragmas themselves.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// DriverName maps a configured driver to its database/sql name.
func DriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return store.DriverPostgres, nil
	case "sqlite":
		return store.DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLiteDSN appends the pragmas the stores rely on, unless the DSN already
// carries its own.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqlitePragmas
}

// Open establishes a connection to the database and configures connection pools.
// Returns the database connection if successful, or an error if the connection fails.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.URL
	if driverName == store.DriverSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driverName == store.DriverSQLite {
		// One connection serializes writers; sqlite rejects concurrent ones.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("driver", driverName))
	return db, nil
}
