// Package adapters provides database adapter implementations for the PostgreSQL
// transition journal.
//
// The journal supports three PostgreSQL client libraries: pgxpool.Pool, sql.DB,
// and sqlx.DB. Each adapter wraps the specifics of its library behind the common
// DBAdapter interface so the journal can execute inserts and selects without
// knowing which connection type it was constructed from.
package adapters
