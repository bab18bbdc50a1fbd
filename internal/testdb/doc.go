// Package testdb provides database fixtures for tests.
//
// Every call to Open creates a private SQLite file under the test's temp
// directory, applies the embedded migrations and registers cleanup, so tests
// using it can run in parallel without sharing state:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.Open(t)
//	    cardID := testdb.InsertCard(t, db, testdb.CardFixture{Slug: "rust-ownership"})
//	    ...
//	}
//
// Set SCRY_TEST_DB_URL to a PostgreSQL URL to run the same tests against
// PostgreSQL; the schema is migrated once and tables are truncated per test,
// so such runs must not be parallel.
package testdb
