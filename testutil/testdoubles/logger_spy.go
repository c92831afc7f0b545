package testdoubles

import (
	"strings"
	"sync"
)

// LoggerSpy is a txstore.Logger implementation that captures log calls for
// testing. Safe for concurrent use.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecord represents one recorded log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
}

// NewLoggerSpy creates a new LoggerSpy instance.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

// Debug implements the Logger interface for testing.
func (s *LoggerSpy) Debug(msg string, args ...any) { s.record("debug", msg, args) }

// Info implements the Logger interface for testing.
func (s *LoggerSpy) Info(msg string, args ...any) { s.record("info", msg, args) }

// Warn implements the Logger interface for testing.
func (s *LoggerSpy) Warn(msg string, args ...any) { s.record("warn", msg, args) }

// Error implements the Logger interface for testing.
func (s *LoggerSpy) Error(msg string, args ...any) { s.record("error", msg, args) }

func (s *LoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args})
}

// Records returns a copy of all recorded log calls.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]LogRecord(nil), s.records...)
}

// RecordsAtLevel returns a copy of the recorded log calls for one level.
func (s *LoggerSpy) RecordsAtLevel(level string) []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]LogRecord, 0)
	for _, record := range s.records {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// ContainsMessage reports whether any recorded message contains the given substring.
func (s *LoggerSpy) ContainsMessage(substring string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if strings.Contains(record.Message, substring) {
			return true
		}
	}

	return false
}

// Reset clears all recorded log calls.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}
