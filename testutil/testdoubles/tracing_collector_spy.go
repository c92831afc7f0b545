package testdoubles

import (
	"context"
	"sync"

	"github.com/statekit/transactional-store-go/txstore"
)

// TracingCollectorSpy is a txstore.TracingCollector implementation that
// captures span lifecycles for testing. Safe for concurrent use.
type TracingCollectorSpy struct {
	mu       sync.Mutex
	started  []StartedSpan
	finished []FinishedSpan
}

// StartedSpan represents one recorded StartSpan call.
type StartedSpan struct {
	Name  string
	Attrs map[string]string
	Span  *SpanContextSpy
}

// FinishedSpan represents one recorded FinishSpan call.
type FinishedSpan struct {
	Span   *SpanContextSpy
	Status string
	Attrs  map[string]string
}

// SpanContextSpy implements txstore.SpanContext and records status and
// attribute updates.
type SpanContextSpy struct {
	mu     sync.Mutex
	status string
	attrs  map[string]string
}

// SetStatus records the span status.
func (s *SpanContextSpy) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// AddAttribute records a span attribute.
func (s *SpanContextSpy) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attrs == nil {
		s.attrs = make(map[string]string)
	}

	s.attrs[key] = value
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy instance.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, txstore.SpanContext) {
	span := &SpanContextSpy{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, StartedSpan{Name: name, Attrs: attrs, Span: span})

	return ctx, span
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(spanCtx txstore.SpanContext, status string, attrs map[string]string) {
	spy, _ := spanCtx.(*SpanContextSpy)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, FinishedSpan{Span: spy, Status: status, Attrs: attrs})
}

// Started returns a copy of all recorded StartSpan calls.
func (s *TracingCollectorSpy) Started() []StartedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]StartedSpan(nil), s.started...)
}

// Finished returns a copy of all recorded FinishSpan calls.
func (s *TracingCollectorSpy) Finished() []FinishedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]FinishedSpan(nil), s.finished...)
}

// Ensure the spies implement the txstore interfaces.
var _ txstore.TracingCollector = (*TracingCollectorSpy)(nil)
var _ txstore.SpanContext = (*SpanContextSpy)(nil)
