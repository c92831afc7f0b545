// Package postgresjournal provides a txstore.Middleware that appends every
// observed transaction transition to a PostgreSQL table and can read a
// transaction's full history back.
//
// The journal honors the middleware contract: Notify swallows every failure
// (bad connection, timeout, SQL error) and converts it into a log line, so the
// store's transition pipeline is never interrupted by the persistence layer.
//
// Three connection flavors are supported, mirroring the adapter pattern of the
// rest of the module:
//
//	journal, err := postgresjournal.NewJournalFromPGXPool(pool)
//	journal, err := postgresjournal.NewJournalFromSQLDB(db)
//	journal, err := postgresjournal.NewJournalFromSQLX(db)
//
// Expected schema (the journal does not create it):
//
//	CREATE TABLE transaction_journal (
//	    transaction_id TEXT                     NOT NULL,
//	    action         TEXT                     NOT NULL,
//	    state          TEXT                     NOT NULL,
//	    occurred_at    TIMESTAMP WITH TIME ZONE NOT NULL,
//	    metadata       JSONB                    NOT NULL
//	);
//	CREATE INDEX ON transaction_journal (transaction_id, occurred_at);
package postgresjournal
