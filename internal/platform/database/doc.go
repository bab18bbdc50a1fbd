// Package database opens the configured SQL backend and applies the schema
// migrations embedded in the binary.
package database
