package txstore

import (
	"context"
	"sync"
)

const (
	spanNameTransaction   = "store.transaction"
	spanAttrTransactionID = "transaction_id"
	spanAttrAction        = "action"
)

// TracingMiddleware opens one tracing span per transaction when it enters
// Started and finishes it with the matching status when the transaction
// resolves. Spans for transactions never observed at Started are silently
// skipped, mirroring the timing table's missing-entry rule.
//
// Because Notify carries no context, spans are rooted in context.Background;
// this middleware observes transaction lifecycles, it does not propagate trace
// context through the store.
type TracingMiddleware struct {
	mu        sync.Mutex
	spans     map[TransactionIDString]SpanContext
	collector TracingCollector
}

// NewTracingMiddleware creates a new TracingMiddleware recording into the
// supplied collector. A nil collector turns every notification into a no-op.
func NewTracingMiddleware(collector TracingCollector) *TracingMiddleware {
	return &TracingMiddleware{
		spans:     make(map[TransactionIDString]SpanContext),
		collector: collector,
	}
}

// Notify observes a single state transition and maintains the matching span.
// It never fails outward.
func (m *TracingMiddleware) Notify(tx Transaction) {
	if m.collector == nil {
		return
	}

	switch tx.State {
	case Pending:
		// span opens once the action actually starts

	case Started:
		m.startSpan(tx)

	case Completed:
		m.finishSpan(tx, StatusCompleted)

	case Canceled:
		m.finishSpan(tx, StatusCanceled)
	}
}

func (m *TracingMiddleware) startSpan(tx Transaction) {
	attrs := map[string]string{
		spanAttrTransactionID: tx.ID,
		spanAttrAction:        tx.Action,
	}

	_, span := m.collector.StartSpan(context.Background(), spanNameTransaction, attrs)

	m.mu.Lock()
	defer m.mu.Unlock()

	// last Started wins, like the timing table
	if open, exists := m.spans[tx.ID]; exists {
		m.collector.FinishSpan(open, StatusCanceled, nil)
	}

	m.spans[tx.ID] = span
}

func (m *TracingMiddleware) finishSpan(tx Transaction, status string) {
	m.mu.Lock()
	span, found := m.spans[tx.ID]
	delete(m.spans, tx.ID)
	m.mu.Unlock()

	if !found {
		return
	}

	m.collector.FinishSpan(span, status, nil)
}

// Ensure TracingMiddleware implements Middleware.
var _ Middleware = (*TracingMiddleware)(nil)
