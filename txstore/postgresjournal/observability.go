package postgresjournal

import (
	"math"
	"time"
)

const (
	logMsgBuildInsertQueryFailed = "failed to build journal insert query"
	logMsgBuildSelectQueryFailed = "failed to build journal select query"
	logMsgDBExecFailed           = "database execution failed during journal append"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgScanRowFailed          = "failed to scan journal row"
	logMsgBuildTransitionFailed  = "failed to build transition from journal row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgTransitionJournaled    = "transition journaled"

	logAttrError         = "error"
	logAttrQuery         = "query"
	logAttrTransactionID = "transaction_id"
	logAttrState         = "state"
	logAttrDurationMS    = "duration_ms"

	// JournalAppendDurationMetric tracks journal write duration (OpenTelemetry-compatible).
	JournalAppendDurationMetric = "journal_append_duration_seconds"

	// JournalAppendErrorsMetric tracks failed journal writes, labeled by error type.
	JournalAppendErrorsMetric = "journal_append_errors_total"

	labelErrorType = "error_type"

	errorTypeQueryBuild = "query_build"
	errorTypeDatabase   = "database"
)

// logDebug logs at debug level if the logger is configured.
func (j Journal) logDebug(message string, args ...any) {
	if j.logger != nil {
		j.logger.Debug(message, args...)
	}
}

// logWarn logs at warn level if the logger is configured.
func (j Journal) logWarn(message string, args ...any) {
	if j.logger != nil {
		j.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (j Journal) logError(message string, err error, args ...any) {
	if j.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		j.logger.Error(message, allArgs...)
	}
}

// recordAppendDuration records the write duration if the collector is configured.
func (j Journal) recordAppendDuration(duration time.Duration) {
	if j.metricsCollector != nil {
		j.metricsCollector.RecordDuration(JournalAppendDurationMetric, duration, nil)
	}
}

// recordAppendError counts a failed write if the collector is configured.
func (j Journal) recordAppendError(errorType string) {
	if j.metricsCollector != nil {
		j.metricsCollector.IncrementCounter(JournalAppendErrorsMetric, map[string]string{labelErrorType: errorType})
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
