package txstore

import (
	"sync"
	"time"
)

const (
	// TransactionDurationMetric tracks Started-to-Completed transaction duration
	// (OpenTelemetry-compatible).
	TransactionDurationMetric = "store_transaction_duration_seconds"

	// TransactionsStartedMetric tracks how many transactions entered Started.
	TransactionsStartedMetric = "store_transactions_started_total"

	// TransactionsResolvedMetric tracks how many transactions reached a terminal
	// state, labeled by status.
	TransactionsResolvedMetric = "store_transactions_resolved_total"

	// StatusCompleted indicates a transaction resolved by completing.
	StatusCompleted = "completed"

	// StatusCanceled indicates a transaction resolved by cancellation.
	StatusCanceled = "cancelled"

	labelAction = "action"
	labelStatus = "status"
)

// MetricsMiddleware feeds a MetricsCollector from observed transaction
// transitions: a per-action duration histogram for completed transactions and
// started/resolved counters. It keeps the same mutex-guarded start table as
// TimingLoggerMiddleware and follows the same robustness rules - a resolution
// without a recorded start still counts, it just records no duration.
type MetricsMiddleware struct {
	mu        sync.Mutex
	starts    map[TransactionIDString]time.Time
	now       func() time.Time
	collector MetricsCollector
}

// MetricsMiddlewareOption defines a functional option for configuring MetricsMiddleware.
type MetricsMiddlewareOption func(*MetricsMiddleware) error

// WithMetricsClock sets the clock source used for duration measurements.
func WithMetricsClock(now func() time.Time) MetricsMiddlewareOption {
	return func(m *MetricsMiddleware) error {
		m.now = now
		return nil
	}
}

// NewMetricsMiddleware creates a new MetricsMiddleware recording into the
// supplied collector, with optional configuration. A nil collector is
// tolerated; every notification then degrades to pure bookkeeping.
func NewMetricsMiddleware(collector MetricsCollector, options ...MetricsMiddlewareOption) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{
		starts:    make(map[TransactionIDString]time.Time),
		now:       time.Now,
		collector: collector,
	}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Notify observes a single state transition and records the matching metrics.
// It never fails outward.
func (m *MetricsMiddleware) Notify(tx Transaction) {
	switch tx.State {
	case Pending:
		// counted only once it actually starts

	case Started:
		m.recordStart(tx)

	case Completed:
		m.recordResolved(tx, StatusCompleted)

	case Canceled:
		m.recordResolved(tx, StatusCanceled)
	}
}

func (m *MetricsMiddleware) recordStart(tx Transaction) {
	m.mu.Lock()
	m.starts[tx.ID] = m.clockNow()
	m.mu.Unlock()

	m.incrementCounter(TransactionsStartedMetric, map[string]string{labelAction: tx.Action})
}

func (m *MetricsMiddleware) recordResolved(tx Transaction, status string) {
	m.mu.Lock()
	start, found := m.starts[tx.ID]

	var elapsed time.Duration
	if found {
		elapsed = m.clockNow().Sub(start)
		delete(m.starts, tx.ID)
	}
	m.mu.Unlock()

	labels := map[string]string{labelAction: tx.Action, labelStatus: status}
	m.incrementCounter(TransactionsResolvedMetric, labels)

	if found && status == StatusCompleted {
		if elapsed < 0 {
			elapsed = 0
		}

		m.recordDuration(TransactionDurationMetric, elapsed, labels)
	}
}

func (m *MetricsMiddleware) clockNow() time.Time {
	if m.now == nil {
		return time.Time{}
	}

	return m.now()
}

func (m *MetricsMiddleware) incrementCounter(metric string, labels map[string]string) {
	if m.collector != nil {
		m.collector.IncrementCounter(metric, labels)
	}
}

func (m *MetricsMiddleware) recordDuration(metric string, duration time.Duration, labels map[string]string) {
	if m.collector != nil {
		m.collector.RecordDuration(metric, duration, labels)
	}
}

// Ensure MetricsMiddleware implements Middleware.
var _ Middleware = (*MetricsMiddleware)(nil)
