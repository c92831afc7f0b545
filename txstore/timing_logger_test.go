package txstore

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loggerSpy captures log records for verification. Safe for concurrent use.
type loggerSpy struct {
	mu      sync.Mutex
	records []spyLogRecord
}

type spyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

func (s *loggerSpy) Debug(msg string, args ...any) { s.append("debug", msg, args) }
func (s *loggerSpy) Info(msg string, args ...any)  { s.append("info", msg, args) }
func (s *loggerSpy) Warn(msg string, args ...any)  { s.append("warn", msg, args) }
func (s *loggerSpy) Error(msg string, args ...any) { s.append("error", msg, args) }

func (s *loggerSpy) append(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, spyLogRecord{Level: level, Message: msg, Args: args})
}

func (s *loggerSpy) Records() []spyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]spyLogRecord(nil), s.records...)
}

// fakeClock is a manually advanced clock source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func Test_TimingLoggerMiddleware_StartedThenCompleted_LogsDurationAndClearsEntry(t *testing.T) {
	spy := &loggerSpy{}
	clock := newFakeClock()
	mw, err := NewTimingLoggerMiddleware(spy, WithClock(clock.Now))
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem"}

	tx.State = Started
	mw.Notify(tx)
	clock.Advance(42 * time.Millisecond)
	tx.State = Completed
	mw.Notify(tx)

	records := spy.Records()
	require.Len(t, records, 1, "exactly one log record should be produced at Completed")
	assert.Equal(t, "info", records[0].Level)
	assert.Equal(t, "(t1) AddItem [42.0 ms]", records[0].Message)
	assert.Equal(t, []any{"subsystem", "io.store", "category", "primary"}, records[0].Args)
	assert.Zero(t, mw.InFlight(), "timing table must not hold the identity after Completed")
}

func Test_TimingLoggerMiddleware_CompletedWithoutStarted_IsSilentNoOp(t *testing.T) {
	spy := &loggerSpy{}
	mw, err := NewTimingLoggerMiddleware(spy)
	require.NoError(t, err)

	mw.Notify(Transaction{ID: "t1", Action: "AddItem", State: Completed})

	assert.Empty(t, spy.Records(), "no log record should be produced without a prior Started")
	assert.Zero(t, mw.InFlight())
}

func Test_TimingLoggerMiddleware_Canceled_LogsMarkerAndClearsEntry(t *testing.T) {
	tests := []struct {
		name        string
		withStarted bool
	}{
		{name: "with prior Started", withStarted: true},
		{name: "without prior Started", withStarted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &loggerSpy{}
			mw, err := NewTimingLoggerMiddleware(spy)
			require.NoError(t, err)

			tx := Transaction{ID: "t2", Action: "RemoveItem"}

			if tt.withStarted {
				tx.State = Started
				mw.Notify(tx)
			}

			tx.State = Canceled
			mw.Notify(tx)

			records := spy.Records()
			require.Len(t, records, 1, "exactly one log record should be produced at Canceled")
			assert.Equal(t, "(t2) RemoveItem [cancelled]", records[0].Message)
			assert.Zero(t, mw.InFlight(), "timing table must not hold the identity after Canceled")
		})
	}
}

func Test_TimingLoggerMiddleware_Pending_ProducesNothing(t *testing.T) {
	spy := &loggerSpy{}
	mw, err := NewTimingLoggerMiddleware(spy)
	require.NoError(t, err)

	mw.Notify(Transaction{ID: "t1", Action: "AddItem", State: Pending})

	assert.Empty(t, spy.Records())
	assert.Zero(t, mw.InFlight(), "no table entry may be created on Pending")
}

func Test_TimingLoggerMiddleware_IdentityReuse_ProducesIndependentMeasurements(t *testing.T) {
	spy := &loggerSpy{}
	clock := newFakeClock()
	mw, err := NewTimingLoggerMiddleware(spy, WithClock(clock.Now))
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem"}

	tx.State = Started
	mw.Notify(tx)
	clock.Advance(10 * time.Millisecond)
	tx.State = Completed
	mw.Notify(tx)

	tx.State = Started
	mw.Notify(tx)
	clock.Advance(5 * time.Millisecond)
	tx.State = Completed
	mw.Notify(tx)

	records := spy.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "(t1) AddItem [10.0 ms]", records[0].Message)
	assert.Equal(t, "(t1) AddItem [5.0 ms]", records[1].Message, "the second measurement must not reuse the first start timestamp")
}

func Test_TimingLoggerMiddleware_DuplicateStarted_LastStartWins(t *testing.T) {
	spy := &loggerSpy{}
	clock := newFakeClock()
	mw, err := NewTimingLoggerMiddleware(spy, WithClock(clock.Now))
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem"}

	tx.State = Started
	mw.Notify(tx)
	clock.Advance(100 * time.Millisecond)
	tx.State = Started
	mw.Notify(tx)
	clock.Advance(7 * time.Millisecond)
	tx.State = Completed
	mw.Notify(tx)

	records := spy.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "(t1) AddItem [7.0 ms]", records[0].Message)
}

func Test_TimingLoggerMiddleware_NilClock_DegradesToZeroDuration(t *testing.T) {
	spy := &loggerSpy{}
	mw, err := NewTimingLoggerMiddleware(spy, WithClock(nil))
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem"}

	tx.State = Started
	mw.Notify(tx)
	tx.State = Completed
	mw.Notify(tx)

	records := spy.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "(t1) AddItem [0.0 ms]", records[0].Message)
}

func Test_TimingLoggerMiddleware_NilLogger_StillMaintainsTable(t *testing.T) {
	mw, err := NewTimingLoggerMiddleware(nil)
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem"}

	tx.State = Started
	mw.Notify(tx)
	assert.Equal(t, 1, mw.InFlight())

	tx.State = Completed
	mw.Notify(tx)
	assert.Zero(t, mw.InFlight())
}

func Test_TimingLoggerMiddleware_CustomSubsystemAndCategory(t *testing.T) {
	spy := &loggerSpy{}
	mw, err := NewTimingLoggerMiddleware(spy, WithSubsystem("io.cart"), WithCategory("checkout"))
	require.NoError(t, err)

	tx := Transaction{ID: "t1", Action: "AddItem", State: Canceled}
	mw.Notify(tx)

	records := spy.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []any{"subsystem", "io.cart", "category", "checkout"}, records[0].Args)
}

func Test_TimingLoggerMiddleware_OptionErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		option      TimingLoggerOption
		expectedErr error
	}{
		{name: "empty subsystem", option: WithSubsystem(""), expectedErr: ErrEmptyLogSubsystem},
		{name: "empty category", option: WithCategory(""), expectedErr: ErrEmptyLogCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimingLoggerMiddleware(&loggerSpy{}, tt.option)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_TimingLoggerMiddleware_ConcurrentTransactions_NoLeakedOrCrossContaminatedEntries(t *testing.T) {
	spy := &loggerSpy{}
	mw, err := NewTimingLoggerMiddleware(spy)
	require.NoError(t, err)

	const transactionCount = 100

	var wg sync.WaitGroup
	for i := 0; i < transactionCount; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			tx := Transaction{ID: fmt.Sprintf("t%d", n), Action: "AddItem"}

			tx.State = Started
			mw.Notify(tx)

			if n%2 == 0 {
				tx.State = Completed
			} else {
				tx.State = Canceled
			}
			mw.Notify(tx)
		}(i)
	}
	wg.Wait()

	assert.Len(t, spy.Records(), transactionCount, "every resolved transaction should produce exactly one record")
	assert.Zero(t, mw.InFlight(), "the table must be empty once all transactions resolve")
}
