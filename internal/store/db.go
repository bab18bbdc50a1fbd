package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX is an interface that abstracts the database access layer.
// It is implemented by both *sqlx.DB and *sqlx.Tx, allowing our code
// to work with either a database connection or a transaction.
//
// DriverName and Rebind come with it, so one query text serves every
// supported dialect.
type DBTX interface {
	sqlx.ExtContext
}

// DriverPostgres is the database/sql driver name registered by pgx.
const DriverPostgres = "pgx"

// DriverSQLite is the database/sql driver name registered by modernc.org/sqlite.
const DriverSQLite = "sqlite"

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available on db.
// SQLite serializes writers on its own and rejects the clause.
func SupportsRowLocks(db DBTX) bool {
	return db.DriverName() == DriverPostgres
}
