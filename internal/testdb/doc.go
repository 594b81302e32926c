// Package testdb provides helpers for database integration tests.
//
// Tests run against the database named by GUTO_TEST_DATABASE_URL (or
// DATABASE_URL) and are skipped when neither is set. GetTestDBWithT applies
// the embedded migrations once per process; WithTx runs a test body inside a
// transaction that is always rolled back, so tests can share the schema
// without cleaning up after themselves:
//
//	func TestClassStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        classes := postgres.NewPostgresClassStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests that exercise row locks across concurrent transactions cannot use
// WithTx; they commit on db directly and remove their rows with Cleanup.
package testdb
