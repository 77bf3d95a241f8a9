//go:build integration

// Package testdb provides database helpers for integration tests.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can share one migrated database and run in parallel.
//
//	func TestQuestionStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresQuestionStore(tx, nil)
//	        ...
//	    })
//	}
//
// Tests are skipped when no database URL is configured. The URL is read from
// QCOMP_TEST_DATABASE_URL, then DATABASE_URL.
package testdb
