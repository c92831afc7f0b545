// Command transactiondemo runs a small shopping-cart scenario against the
// transactional store, showing the timing logger, the Prometheus metrics
// middleware, and the optional PostgreSQL transition journal working together.
//
// Run it without arguments for the in-memory demo. Set JOURNAL_ENABLED=true
// (and optionally POSTGRES_DSN) to also persist every transition to the
// transaction_journal table.
package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/statekit/transactional-store-go/example/config"
	"github.com/statekit/transactional-store-go/txstore"
	"github.com/statekit/transactional-store-go/txstore/postgresjournal"
	"github.com/statekit/transactional-store-go/txstore/promadapters"
)

const cancelEveryNth = 4

var cartActions = []string{
	"AddItemToCart",
	"RemoveItemFromCart",
	"ApplyDiscountCode",
	"Checkout",
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	timingMiddleware, err := txstore.NewTimingLoggerMiddleware(logger)
	if err != nil {
		log.Fatal("Failed to create timing middleware, error: ", err)
	}

	registry := prometheus.NewRegistry()
	metricsMiddleware, err := txstore.NewMetricsMiddleware(promadapters.NewMetricsCollector(registry))
	if err != nil {
		log.Fatal("Failed to create metrics middleware, error: ", err)
	}

	middlewares := []txstore.Middleware{timingMiddleware, metricsMiddleware}

	journal, journalEnabled := maybeJournal(logger)
	if journalEnabled {
		middlewares = append(middlewares, journal)
	}

	store, err := txstore.NewStore(
		txstore.WithMiddleware(middlewares...),
		txstore.WithLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to create store, error: ", err)
	}

	lastID := runScenario(store)

	if journalEnabled {
		printJournal(logger, journal, lastID)
	}
}

// runScenario drives a handful of cart transactions through their lifecycle
// and returns the identity of the last one, so the journal read-back has a
// known transaction to show.
func runScenario(store *txstore.Store) txstore.TransactionIDString {
	var lastID txstore.TransactionIDString

	for i := 0; i < 8; i++ {
		action := cartActions[i%len(cartActions)]

		tx := store.Begin(action)
		lastID = tx.ID

		tx, err := store.Start(tx)
		if err != nil {
			log.Fatal("Failed to start transaction, error: ", err)
		}

		// Simulate the work the transaction covers.
		time.Sleep(time.Duration(10+rand.IntN(40)) * time.Millisecond)

		if i%cancelEveryNth == cancelEveryNth-1 {
			_, err = store.Cancel(tx)
		} else {
			_, err = store.Complete(tx)
		}
		if err != nil {
			log.Fatal("Failed to resolve transaction, error: ", err)
		}
	}

	return lastID
}

// maybeJournal wires a PostgreSQL journal middleware when JOURNAL_ENABLED is
// set. The demo stays useful without a database.
func maybeJournal(logger *slog.Logger) (postgresjournal.Journal, bool) {
	if os.Getenv("JOURNAL_ENABLED") != "true" {
		return postgresjournal.Journal{}, false
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
	if err != nil {
		log.Fatal("Failed to create connection pool, error: ", err)
	}

	journal, err := postgresjournal.NewJournalFromPGXPool(
		pool,
		postgresjournal.WithLogger(logger),
		postgresjournal.WithMetadata(map[string]string{"source": "transactiondemo"}),
	)
	if err != nil {
		log.Fatal("Failed to create journal, error: ", err)
	}

	return journal, true
}

func printJournal(logger *slog.Logger, journal postgresjournal.Journal, transactionID txstore.TransactionIDString) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transitions, err := journal.Transitions(ctx, transactionID)
	if err != nil {
		log.Fatal("Failed to read journal, error: ", err)
	}

	for _, transition := range transitions {
		logger.Info("journaled transition",
			"transaction_id", transition.TransactionID,
			"action", transition.Action,
			"state", transition.State.String(),
			"occurred_at", transition.OccurredAt,
		)
	}
}
