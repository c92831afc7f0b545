package txstore

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyJournalTableName = errors.New("empty journal table name supplied")
var ErrInvalidTransition = errors.New("invalid transaction state transition")
var ErrEmptyLogSubsystem = errors.New("empty log subsystem supplied")
var ErrEmptyLogCategory = errors.New("empty log category supplied")
var ErrNilMiddlewareSupplied = errors.New("nil middleware supplied")
