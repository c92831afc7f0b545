package txstore

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultLogSubsystem identifies the logging subsystem transaction records
	// are attributed to unless overridden with WithSubsystem.
	DefaultLogSubsystem = "io.store"

	// DefaultLogCategory identifies the logging category transaction records
	// are attributed to unless overridden with WithCategory.
	DefaultLogCategory = "primary"

	canceledLogMarker = "cancelled"
	logAttrSubsystem  = "subsystem"
	logAttrCategory   = "category"
)

// TimingLoggerMiddleware measures the elapsed time between a transaction's
// Started and Completed notifications and emits one log record per resolved
// transaction: a millisecond duration on completion, a fixed marker on
// cancellation, nothing at all for Pending.
//
// Start timestamps are kept in a table keyed by transaction ID, protected by a
// single mutex so that concurrent notifications for different (or the same)
// transactions do not race. Timestamps are taken from Go's monotonic clock
// (time.Time carries the monotonic reading), so wall-clock adjustments cannot
// skew a measurement. An entry never survives Completed or Canceled.
//
// A Completed notification for a transaction that was never observed at
// Started is a benign no-op; out-of-order or duplicate notifications must not
// crash the store's pipeline. Notify never fails outward.
type TimingLoggerMiddleware struct {
	mu        sync.Mutex
	starts    map[TransactionIDString]time.Time
	now       func() time.Time
	logger    Logger
	subsystem string
	category  string
}

// TimingLoggerOption defines a functional option for configuring TimingLoggerMiddleware.
type TimingLoggerOption func(*TimingLoggerMiddleware) error

// WithClock sets the clock source used for start and completion timestamps.
// Passing nil degrades every measurement to a zero duration instead of failing;
// by contract the middleware never aborts a notification.
func WithClock(now func() time.Time) TimingLoggerOption {
	return func(m *TimingLoggerMiddleware) error {
		m.now = now
		return nil
	}
}

// WithSubsystem sets the subsystem identifier attached to every log record.
func WithSubsystem(subsystem string) TimingLoggerOption {
	return func(m *TimingLoggerMiddleware) error {
		if subsystem == "" {
			return ErrEmptyLogSubsystem
		}

		m.subsystem = subsystem

		return nil
	}
}

// WithCategory sets the category identifier attached to every log record.
func WithCategory(category string) TimingLoggerOption {
	return func(m *TimingLoggerMiddleware) error {
		if category == "" {
			return ErrEmptyLogCategory
		}

		m.category = category

		return nil
	}
}

// NewTimingLoggerMiddleware creates a new TimingLoggerMiddleware writing to the
// supplied logger, with optional configuration.
//
// The logger receives one Info record per completed or canceled transaction,
// carrying the configured subsystem/category pair as attributes. A nil logger
// is tolerated: bookkeeping still happens, emission is skipped.
func NewTimingLoggerMiddleware(logger Logger, options ...TimingLoggerOption) (*TimingLoggerMiddleware, error) {
	m := &TimingLoggerMiddleware{
		starts:    make(map[TransactionIDString]time.Time),
		now:       time.Now,
		logger:    logger,
		subsystem: DefaultLogSubsystem,
		category:  DefaultLogCategory,
	}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Notify observes a single state transition. It only ever produces side
// effects; it never returns or propagates a failure to the calling engine.
func (m *TimingLoggerMiddleware) Notify(tx Transaction) {
	switch tx.State {
	case Pending:
		// no measurement begins before the action executes

	case Started:
		m.recordStart(tx)

	case Completed:
		m.logCompleted(tx)

	case Canceled:
		m.logCanceled(tx)
	}
}

// InFlight reports how many transactions currently have a recorded start
// timestamp without having resolved yet.
func (m *TimingLoggerMiddleware) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.starts)
}

// recordStart stores the current timestamp under the transaction's ID.
// A pre-existing entry is overwritten: the last Started wins, so a retried
// transaction reusing its identity never reports a stale duration.
func (m *TimingLoggerMiddleware) recordStart(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.starts[tx.ID] = m.clockNow()
}

// logCompleted looks up the start timestamp, computes the elapsed time and
// emits the completion record. Without a recorded start this is a no-op.
func (m *TimingLoggerMiddleware) logCompleted(tx Transaction) {
	m.mu.Lock()
	start, found := m.starts[tx.ID]

	var elapsed time.Duration
	if found {
		elapsed = m.clockNow().Sub(start)
		delete(m.starts, tx.ID)
	}
	m.mu.Unlock()

	if !found {
		return
	}

	if elapsed < 0 {
		elapsed = 0
	}

	m.emit(fmt.Sprintf("(%s) %s [%.1f ms]", tx.ID, tx.Action, float64(elapsed.Nanoseconds())/1e6))
}

// logCanceled emits the cancellation record unconditionally and drops any
// recorded start for the transaction.
func (m *TimingLoggerMiddleware) logCanceled(tx Transaction) {
	m.mu.Lock()
	delete(m.starts, tx.ID)
	m.mu.Unlock()

	m.emit(fmt.Sprintf("(%s) %s [%s]", tx.ID, tx.Action, canceledLogMarker))
}

// clockNow queries the configured clock, degrading to the zero time when no
// clock is available so that a notification never aborts.
func (m *TimingLoggerMiddleware) clockNow() time.Time {
	if m.now == nil {
		return time.Time{}
	}

	return m.now()
}

// emit writes one transaction record at info level if the logger is configured.
// Emission happens outside the timing table's critical section; only table
// consistency is guaranteed, not ordering between concurrent log lines.
func (m *TimingLoggerMiddleware) emit(line string) {
	if m.logger == nil {
		return
	}

	m.logger.Info(line, logAttrSubsystem, m.subsystem, logAttrCategory, m.category)
}

// Ensure TimingLoggerMiddleware implements Middleware.
var _ Middleware = (*TimingLoggerMiddleware)(nil)
