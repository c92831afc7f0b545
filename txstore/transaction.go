package txstore

import "errors"

var ErrUnknownTransactionState = errors.New("unknown transaction state")

// TransactionIDString is a type alias for string, representing the opaque identity
// of a transaction instance. It is unique per instance and stable for the
// transaction's entire lifetime.
type TransactionIDString = string

// TransactionState represents the lifecycle stage of a transaction at the moment
// a middleware is notified. Transitions are driven by the store engine; a
// middleware only ever observes them.
type TransactionState int

const (
	// Pending means the transaction exists but its action has not begun executing.
	Pending TransactionState = iota

	// Started means the action is executing.
	Started

	// Completed means the action finished and its result was applied.
	Completed

	// Canceled means the transaction was abandoned before completing.
	Canceled
)

const (
	statePendingString   = "pending"
	stateStartedString   = "started"
	stateCompletedString = "completed"
	stateCanceledString  = "canceled"
)

// String returns the lowercase name of the state, or "unknown" for values
// outside the enumeration.
func (s TransactionState) String() string {
	switch s {
	case Pending:
		return statePendingString
	case Started:
		return stateStartedString
	case Completed:
		return stateCompletedString
	case Canceled:
		return stateCanceledString
	default:
		return "unknown"
	}
}

// ParseTransactionState converts the string representation produced by String
// back into a TransactionState. Returns ErrUnknownTransactionState for any
// other input.
func ParseTransactionState(s string) (TransactionState, error) {
	switch s {
	case statePendingString:
		return Pending, nil
	case stateStartedString:
		return Started, nil
	case stateCompletedString:
		return Completed, nil
	case stateCanceledString:
		return Canceled, nil
	default:
		return 0, ErrUnknownTransactionState
	}
}

// Transaction is the read-only snapshot of an in-flight transaction that the
// store engine delivers to every registered Middleware, once per state
// transition.
//
// ID is the lookup key for any per-transaction bookkeeping a middleware keeps.
// Action identifies the command the transaction represents; it is carried for
// logging and labeling, never used as a key.
type Transaction struct {
	ID     TransactionIDString
	Action string
	State  TransactionState
}
