package postgresjournal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/statekit/transactional-store-go/txstore"
	"github.com/statekit/transactional-store-go/txstore/postgresjournal/internal/adapters"
)

var ErrBuildingQueryFailed = errors.New("building journal query failed")
var ErrReadingTransitionsFailed = errors.New("reading journal transitions failed")
var ErrScanningDBRowFailed = errors.New("scanning journal row failed")
var ErrInvalidMetadataJSON = errors.New("journal metadata is not valid json")

const (
	defaultJournalTableName = "transaction_journal"
	defaultWriteTimeout     = 5 * time.Second

	colTransactionID = "transaction_id"
	colAction        = "action"
	colState         = "state"
	colOccurredAt    = "occurred_at"
	colMetadata      = "metadata"
	dialectPostgres  = "postgres"
)

type sqlQueryString = string

// jsonAPI is the codec for journal metadata.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Transition is one journaled state transition of a transaction.
type Transition struct {
	TransactionID txstore.TransactionIDString
	Action        string
	State         txstore.TransactionState
	OccurredAt    time.Time
	Metadata      map[string]string
}

// Journal is a middleware that persists every observed transition to a
// Postgres table. It leverages a database adapter and supports customizable
// logging, metrics, table name, per-write timeout, and static metadata
// attached to every entry.
type Journal struct {
	db               adapters.DBAdapter
	tableName        string
	writeTimeout     time.Duration
	metadataJSON     []byte
	logger           txstore.Logger
	metricsCollector txstore.MetricsCollector
}

// NewJournalFromPGXPool creates a new Journal using a pgx pool with optional configuration.
func NewJournalFromPGXPool(pool *pgxpool.Pool, options ...Option) (Journal, error) {
	if pool == nil {
		return Journal{}, txstore.ErrNilDatabaseConnection
	}

	return buildJournal(adapters.NewPGXAdapter(pool), options...)
}

// NewJournalFromSQLDB creates a new Journal using a sql.DB with optional configuration.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (Journal, error) {
	if db == nil {
		return Journal{}, txstore.ErrNilDatabaseConnection
	}

	return buildJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a new Journal using a sqlx.DB with optional configuration.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (Journal, error) {
	if db == nil {
		return Journal{}, txstore.ErrNilDatabaseConnection
	}

	return buildJournal(adapters.NewSQLXAdapter(db), options...)
}

func buildJournal(db adapters.DBAdapter, options ...Option) (Journal, error) {
	j := Journal{
		db:           db,
		tableName:    defaultJournalTableName,
		writeTimeout: defaultWriteTimeout,
		metadataJSON: []byte(`{}`),
	}

	for _, option := range options {
		if err := option(&j); err != nil {
			return Journal{}, err
		}
	}

	return j, nil
}

// Notify appends the observed transition to the journal table.
//
// Failures are logged and counted, never propagated: by the middleware
// contract a journal outage must not interrupt the store's transition
// pipeline.
func (j Journal) Notify(tx txstore.Transaction) {
	sqlQuery, buildQueryErr := j.buildInsertQuery(tx, time.Now())
	if buildQueryErr != nil {
		j.logError(logMsgBuildInsertQueryFailed, buildQueryErr, logAttrTransactionID, tx.ID)
		j.recordAppendError(errorTypeQueryBuild)

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.writeTimeout)
	defer cancel()

	start := time.Now()
	_, execErr := j.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)

	if execErr != nil {
		j.logError(logMsgDBExecFailed, execErr, logAttrTransactionID, tx.ID, logAttrQuery, sqlQuery)
		j.recordAppendError(errorTypeDatabase)

		return
	}

	j.logDebug(logMsgTransitionJournaled,
		logAttrTransactionID, tx.ID,
		logAttrState, tx.State.String(),
		logAttrDurationMS, toMilliseconds(duration),
	)
	j.recordAppendDuration(duration)
}

// Transitions retrieves all journaled transitions for one transaction,
// ordered by occurrence time.
func (j Journal) Transitions(ctx context.Context, transactionID txstore.TransactionIDString) ([]Transition, error) {
	sqlQuery, buildQueryErr := j.buildSelectQuery(transactionID)
	if buildQueryErr != nil {
		j.logError(logMsgBuildSelectQueryFailed, buildQueryErr, logAttrTransactionID, transactionID)
		return nil, buildQueryErr
	}

	rows, queryErr := j.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		j.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrReadingTransitionsFailed, queryErr)
	}
	defer j.closeRows(rows)

	return j.scanTransitions(rows)
}

func (j Journal) scanTransitions(rows adapters.DBRows) ([]Transition, error) {
	transitions := make([]Transition, 0)

	var (
		transactionID string
		action        string
		stateName     string
		occurredAt    time.Time
		metadataJSON  []byte
	)

	for rows.Next() {
		if scanErr := rows.Scan(&transactionID, &action, &stateName, &occurredAt, &metadataJSON); scanErr != nil {
			j.logError(logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		transition, buildErr := buildTransition(transactionID, action, stateName, occurredAt, metadataJSON)
		if buildErr != nil {
			j.logError(logMsgBuildTransitionFailed, buildErr, logAttrTransactionID, transactionID)
			return nil, buildErr
		}

		transitions = append(transitions, transition)
	}

	return transitions, nil
}

func buildTransition(
	transactionID string,
	action string,
	stateName string,
	occurredAt time.Time,
	metadataJSON []byte,
) (Transition, error) {

	state, parseErr := txstore.ParseTransactionState(stateName)
	if parseErr != nil {
		return Transition{}, parseErr
	}

	metadata := make(map[string]string)
	if len(metadataJSON) > 0 {
		if unmarshalErr := jsonAPI.Unmarshal(metadataJSON, &metadata); unmarshalErr != nil {
			return Transition{}, errors.Join(ErrInvalidMetadataJSON, unmarshalErr)
		}
	}

	return Transition{
		TransactionID: transactionID,
		Action:        action,
		State:         state,
		OccurredAt:    occurredAt,
		Metadata:      metadata,
	}, nil
}

func (j Journal) buildInsertQuery(tx txstore.Transaction, occurredAt time.Time) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(j.tableName).
		Rows(goqu.Record{
			colTransactionID: tx.ID,
			colAction:        tx.Action,
			colState:         tx.State.String(),
			colOccurredAt:    occurredAt,
			colMetadata:      string(j.metadataJSON),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j Journal) buildSelectQuery(transactionID txstore.TransactionIDString) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Select(colTransactionID, colAction, colState, colOccurredAt, colMetadata).
		Where(goqu.Ex{colTransactionID: transactionID}).
		Order(goqu.I(colOccurredAt).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (j Journal) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		j.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// Ensure Journal implements txstore.Middleware.
var _ txstore.Middleware = Journal{}
