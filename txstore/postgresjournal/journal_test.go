package postgresjournal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statekit/transactional-store-go/testutil/testdoubles"
	"github.com/statekit/transactional-store-go/txstore"
	"github.com/statekit/transactional-store-go/txstore/postgresjournal/internal/adapters"
)

// stubAdapter is an in-memory adapters.DBAdapter for tests without a database.
type stubAdapter struct {
	mu          sync.Mutex
	execQueries []string
	execErr     error
	queryRows   *stubRows
	queryErr    error
}

func (s *stubAdapter) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execQueries = append(s.execQueries, query)

	if s.execErr != nil {
		return nil, s.execErr
	}

	return stubResult{}, nil
}

func (s *stubAdapter) Query(_ context.Context, _ string) (adapters.DBRows, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	return s.queryRows, nil
}

func (s *stubAdapter) ExecQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.execQueries...)
}

type stubResult struct{}

func (stubResult) RowsAffected() (int64, error) { return 1, nil }

type stubRows struct {
	rows [][]any
	pos  int
}

func (r *stubRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++

	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]

	*dest[0].(*string) = row[0].(string)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*string) = row[2].(string)
	*dest[3].(*time.Time) = row[3].(time.Time)
	*dest[4].(*[]byte) = row[4].([]byte)

	return nil
}

func (r *stubRows) Close() error { return nil }

func journalWithAdapter(t *testing.T, db adapters.DBAdapter, options ...Option) Journal {
	t.Helper()

	j, err := buildJournal(db, options...)
	require.NoError(t, err)

	return j
}

func Test_Journal_Notify_AppendsTransition(t *testing.T) {
	db := &stubAdapter{}
	spy := testdoubles.NewLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	j := journalWithAdapter(t, db, WithLogger(spy), WithMetrics(metrics))

	j.Notify(txstore.Transaction{ID: "t1", Action: "AddItem", State: txstore.Started})

	queries := db.ExecQueries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], `INSERT INTO "transaction_journal"`)
	assert.Contains(t, queries[0], "t1")
	assert.Contains(t, queries[0], "AddItem")
	assert.Contains(t, queries[0], "started")

	debugRecords := spy.RecordsAtLevel("debug")
	require.Len(t, debugRecords, 1)
	assert.Equal(t, logMsgTransitionJournaled, debugRecords[0].Message)

	durations := metrics.Durations()
	require.Len(t, durations, 1)
	assert.Equal(t, JournalAppendDurationMetric, durations[0].Metric)
}

func Test_Journal_Notify_DatabaseFailure_IsSwallowedAndLogged(t *testing.T) {
	db := &stubAdapter{execErr: errors.New("connection refused")}
	spy := testdoubles.NewLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	j := journalWithAdapter(t, db, WithLogger(spy), WithMetrics(metrics))

	assert.NotPanics(t, func() {
		j.Notify(txstore.Transaction{ID: "t1", Action: "AddItem", State: txstore.Completed})
	})

	errorRecords := spy.RecordsAtLevel("error")
	require.Len(t, errorRecords, 1)
	assert.Equal(t, logMsgDBExecFailed, errorRecords[0].Message)

	counters := metrics.Counters()
	require.Len(t, counters, 1)
	assert.Equal(t, JournalAppendErrorsMetric, counters[0].Metric)
	assert.Equal(t, map[string]string{"error_type": "database"}, counters[0].Labels)
}

func Test_Journal_Notify_CustomTableAndMetadata(t *testing.T) {
	db := &stubAdapter{}
	j := journalWithAdapter(t, db,
		WithTableName("store_audit"),
		WithMetadata(map[string]string{"node": "worker-1"}),
	)

	j.Notify(txstore.Transaction{ID: "t1", Action: "AddItem", State: txstore.Canceled})

	queries := db.ExecQueries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], `INSERT INTO "store_audit"`)
	assert.Contains(t, queries[0], "worker-1")
}

func Test_Journal_Transitions_ReadsBackHistory(t *testing.T) {
	occurredFirst := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	occurredSecond := occurredFirst.Add(42 * time.Millisecond)

	db := &stubAdapter{queryRows: &stubRows{rows: [][]any{
		{"t1", "AddItem", "started", occurredFirst, []byte(`{"node": "worker-1"}`)},
		{"t1", "AddItem", "completed", occurredSecond, []byte(`{}`)},
	}}}
	j := journalWithAdapter(t, db)

	transitions, err := j.Transitions(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, transitions, 2)

	assert.Equal(t, txstore.Started, transitions[0].State)
	assert.Equal(t, "worker-1", transitions[0].Metadata["node"])
	assert.Equal(t, txstore.Completed, transitions[1].State)
	assert.Equal(t, occurredSecond, transitions[1].OccurredAt)
}

func Test_Journal_Transitions_UnknownState_Fails(t *testing.T) {
	db := &stubAdapter{queryRows: &stubRows{rows: [][]any{
		{"t1", "AddItem", "exploded", time.Now(), []byte(`{}`)},
	}}}
	j := journalWithAdapter(t, db)

	_, err := j.Transitions(context.Background(), "t1")
	assert.ErrorIs(t, err, txstore.ErrUnknownTransactionState)
}

func Test_Journal_Transitions_QueryFailure(t *testing.T) {
	db := &stubAdapter{queryErr: errors.New("connection refused")}
	j := journalWithAdapter(t, db)

	_, err := j.Transitions(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrReadingTransitionsFailed)
}

func Test_Journal_Factories_RejectNilConnections(t *testing.T) {
	_, pgxErr := NewJournalFromPGXPool(nil)
	assert.ErrorIs(t, pgxErr, txstore.ErrNilDatabaseConnection)

	_, sqlErr := NewJournalFromSQLDB(nil)
	assert.ErrorIs(t, sqlErr, txstore.ErrNilDatabaseConnection)

	_, sqlxErr := NewJournalFromSQLX(nil)
	assert.ErrorIs(t, sqlxErr, txstore.ErrNilDatabaseConnection)
}

func Test_Journal_OptionErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		option      Option
		expectedErr error
	}{
		{name: "empty table name", option: WithTableName(""), expectedErr: txstore.ErrEmptyJournalTableName},
		{name: "zero write timeout", option: WithWriteTimeout(0), expectedErr: ErrNonPositiveWriteTimeout},
		{name: "negative write timeout", option: WithWriteTimeout(-time.Second), expectedErr: ErrNonPositiveWriteTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildJournal(&stubAdapter{}, tt.option)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_Journal_BuildSelectQuery_FiltersAndOrders(t *testing.T) {
	j := journalWithAdapter(t, &stubAdapter{})

	sqlQuery, err := j.buildSelectQuery("t1")
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, `FROM "transaction_journal"`)
	assert.Contains(t, sqlQuery, `"transaction_id" = 't1'`)
	assert.Contains(t, sqlQuery, `ORDER BY "occurred_at" ASC`)
}
