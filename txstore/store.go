package txstore

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	logMsgMiddlewarePanicked = "middleware panicked during notification"
	logAttrPanic             = "panic"
	logAttrTransactionID     = "transaction_id"
	logAttrAction            = "action"
	logAttrState             = "state"
)

// Store is the transaction engine. It mints transactions, drives them through
// their lifecycle, and fans every state transition out to the registered
// middlewares, synchronously and in registration order.
//
// The engine owns the transition rules: Pending -> Started -> Completed on the
// normal path, with cancellation allowed from Pending or Started. Middlewares
// only observe. A middleware that panics despite the Middleware contract is
// recovered and logged so the transition pipeline is never interrupted.
type Store struct {
	middlewares Middlewares
	logger      Logger
}

// StoreOption defines a functional option for configuring Store.
type StoreOption func(*Store) error

// WithMiddleware registers one or more middlewares. Registration order is
// notification order.
func WithMiddleware(middlewares ...Middleware) StoreOption {
	return func(s *Store) error {
		for _, mw := range middlewares {
			if mw == nil {
				return ErrNilMiddlewareSupplied
			}

			s.middlewares = append(s.middlewares, mw)
		}

		return nil
	}
}

// WithLogger sets the logger the engine itself reports into, e.g. when a
// middleware panic is recovered. Middlewares bring their own sinks.
func WithLogger(logger Logger) StoreOption {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore creates a new Store with optional configuration.
func NewStore(options ...StoreOption) (*Store, error) {
	s := &Store{}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Begin mints a new transaction for the given action label in state Pending
// and notifies the middlewares. The identity is a fresh UUID, stable for the
// transaction's lifetime.
func (s *Store) Begin(action string) Transaction {
	tx := Transaction{
		ID:     uuid.NewString(),
		Action: action,
		State:  Pending,
	}

	s.notifyAll(tx)

	return tx
}

// Start moves a pending transaction to Started and notifies the middlewares.
func (s *Store) Start(tx Transaction) (Transaction, error) {
	return s.transition(tx, Started)
}

// Complete moves a started transaction to Completed and notifies the middlewares.
func (s *Store) Complete(tx Transaction) (Transaction, error) {
	return s.transition(tx, Completed)
}

// Cancel moves a pending or started transaction to Canceled and notifies the
// middlewares.
func (s *Store) Cancel(tx Transaction) (Transaction, error) {
	return s.transition(tx, Canceled)
}

func (s *Store) transition(tx Transaction, next TransactionState) (Transaction, error) {
	if !canTransition(tx.State, next) {
		return tx, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tx.State, next)
	}

	tx.State = next
	s.notifyAll(tx)

	return tx, nil
}

func canTransition(from, to TransactionState) bool {
	switch to {
	case Started:
		return from == Pending
	case Completed:
		return from == Started
	case Canceled:
		return from == Pending || from == Started
	default:
		return false
	}
}

func (s *Store) notifyAll(tx Transaction) {
	for _, mw := range s.middlewares {
		s.notifyOne(mw, tx)
	}
}

// notifyOne delivers a single notification, converting a middleware panic into
// an error log line instead of letting it unwind the transition pipeline.
func (s *Store) notifyOne(mw Middleware, tx Transaction) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error(logMsgMiddlewarePanicked,
					logAttrPanic, fmt.Sprintf("%v", r),
					logAttrTransactionID, tx.ID,
					logAttrAction, tx.Action,
					logAttrState, tx.State.String(),
				)
			}
		}
	}()

	mw.Notify(tx)
}
