package txstore

// Middlewares is an alias type for a slice of Middleware.
type Middlewares = []Middleware

// Middleware is notified of every state transition of an in-flight transaction.
//
// The store engine calls Notify synchronously, on whatever goroutine drives the
// transition, once per transition per transaction. Implementations must not
// panic or otherwise interrupt the caller's transition pipeline; a middleware
// that fails internally should turn the failure into a side effect such as a
// log line. Notify must be safe for concurrent use, since several transactions
// can be in flight at once.
type Middleware interface {
	Notify(tx Transaction)
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(tx Transaction)

// Notify calls f(tx).
func (f MiddlewareFunc) Notify(tx Transaction) {
	f(tx)
}

// NopMiddleware ignores every notification. Useful as a placeholder in wiring
// and in tests.
type NopMiddleware struct{}

// Notify does nothing.
func (NopMiddleware) Notify(Transaction) {}
