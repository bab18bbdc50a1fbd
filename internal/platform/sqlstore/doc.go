// Package sqlstore implements the store interfaces on database/sql through
// sqlx. Queries are written with "?" placeholders and rebound for the driver
// in use, so the same stores run on PostgreSQL (pgx) and SQLite (modernc).
package sqlstore
