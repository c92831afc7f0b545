package postgresjournal

import (
	"errors"
	"time"

	"github.com/statekit/transactional-store-go/txstore"
)

var ErrNonPositiveWriteTimeout = errors.New("non-positive journal write timeout supplied")

// Option defines a functional option for configuring Journal.
type Option func(*Journal) error

// WithTableName sets the table name for the Journal.
func WithTableName(tableName string) Option {
	return func(j *Journal) error {
		if tableName == "" {
			return txstore.ErrEmptyJournalTableName
		}

		j.tableName = tableName

		return nil
	}
}

// WithWriteTimeout bounds how long one Notify may spend writing to the
// database before the attempt is abandoned (and logged).
func WithWriteTimeout(timeout time.Duration) Option {
	return func(j *Journal) error {
		if timeout <= 0 {
			return ErrNonPositiveWriteTimeout
		}

		j.writeTimeout = timeout

		return nil
	}
}

// WithMetadata attaches static metadata (e.g. host or deployment identifiers)
// to every journaled transition.
func WithMetadata(metadata map[string]string) Option {
	return func(j *Journal) error {
		metadataJSON, marshalErr := jsonAPI.Marshal(metadata)
		if marshalErr != nil {
			return errors.Join(ErrInvalidMetadataJSON, marshalErr)
		}

		j.metadataJSON = metadataJSON

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: journaled transitions with write timing (development use)
// Warn level: non-critical issues like cleanup failures
// Error level: failed writes and reads - remember that Notify never
// propagates these, the log line is the only trace.
func WithLogger(logger txstore.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Journal. The collector
// receives append durations and error counts.
func WithMetrics(collector txstore.MetricsCollector) Option {
	return func(j *Journal) error {
		j.metricsCollector = collector
		return nil
	}
}
