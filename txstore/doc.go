// Package txstore provides the middleware notification mechanism for a
// transactional state-management store.
//
// A transaction moves through a small, externally driven lifecycle
// (Pending -> Started -> Completed, or canceled along the way). On every
// transition the store hands a read-only Transaction snapshot to each
// registered Middleware, synchronously and in registration order.
// Middlewares observe transitions; they never initiate them, and by
// contract they never let an internal failure escape into the store's
// transition pipeline.
//
// Key types:
//   - Transaction / TransactionState: the snapshot delivered on each transition
//   - Middleware: the single-operation notification contract
//   - TimingLoggerMiddleware: logs the elapsed time of every resolved transaction
//   - MetricsMiddleware / TracingMiddleware: feed the observability contracts
//   - Store: the engine that mints transactions and fans out notifications
//
// Common usage pattern:
//
//	timing, _ := txstore.NewTimingLoggerMiddleware(slog.Default())
//	store, _ := txstore.NewStore(txstore.WithMiddleware(timing))
//
//	tx := store.Begin("AddItem")
//	tx, _ = store.Start(tx)
//	// ... apply the action ...
//	tx, _ = store.Complete(tx)
//
// Observability is dependency-free: the Logger, MetricsCollector and
// TracingCollector interfaces have no third-party imports. Adapters for
// OpenTelemetry live in txstore/oteladapters, for Prometheus in
// txstore/promadapters, and a durable transition journal backed by
// Postgres in txstore/postgresjournal.
package txstore
