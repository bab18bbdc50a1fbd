// Package store defines the persistence interfaces used by the services,
// the transaction helper that scopes a read-modify-write, and the error
// values every implementation returns.
package store
