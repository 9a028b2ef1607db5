package resilience

import (
	"context"
	"errors"
)

// Operation is the unit of work a pipeline guards. The context carries the
// single cancellation signal threaded through the whole strategy chain;
// strategies may derive tighter child contexts but always honor the parent.
type Operation[R any] func(ctx context.Context) (R, error)

// Outcome is the tagged result of one call attempt: either a value or an
// error. Strategies consume an Outcome and produce an Outcome; it is
// immutable once produced.
type Outcome[R any] struct {
	Value R
	Err   error
}

// Success wraps a value in a successful Outcome.
func Success[R any](value R) Outcome[R] {
	return Outcome[R]{Value: value}
}

// Failure wraps an error in a failed Outcome.
func Failure[R any](err error) Outcome[R] {
	return Outcome[R]{Err: err}
}

// IsFailure reports whether the outcome carries an error.
func (o Outcome[R]) IsFailure() bool {
	return o.Err != nil
}

// Unpack returns the outcome's value and error pair.
func (o Outcome[R]) Unpack() (R, error) {
	return o.Value, o.Err
}

// Predicate classifies whether a strategy acts on a given outcome. A
// predicate returning false means the strategy passes the outcome through
// untouched.
type Predicate[R any] func(Outcome[R]) bool

// HandleAll handles every failed outcome except context cancellation.
// Cancellation is never treated as a handleable failure: it must propagate
// unchanged so that strategies do not retry or substitute a cancelled call.
func HandleAll[R any](o Outcome[R]) bool {
	if o.Err == nil {
		return false
	}
	return !errors.Is(o.Err, context.Canceled) && !errors.Is(o.Err, context.DeadlineExceeded)
}

// HandleErrors returns a predicate that handles outcomes whose error matches
// any of errs via errors.Is.
func HandleErrors[R any](errs ...error) Predicate[R] {
	return func(o Outcome[R]) bool {
		for _, target := range errs {
			if errors.Is(o.Err, target) {
				return true
			}
		}
		return false
	}
}

// HandleIf adapts a plain error predicate. Successful outcomes are never
// handled.
func HandleIf[R any](fn func(error) bool) Predicate[R] {
	return func(o Outcome[R]) bool {
		return o.Err != nil && fn(o.Err)
	}
}

// Not inverts a predicate. Typical use is excluding breaker rejections from
// a retry: And(HandleAll, Not(HandleErrors(ErrCircuitOpen))).
func Not[R any](p Predicate[R]) Predicate[R] {
	return func(o Outcome[R]) bool {
		return !p(o)
	}
}

// And combines predicates; all must match for the outcome to be handled.
func And[R any](ps ...Predicate[R]) Predicate[R] {
	return func(o Outcome[R]) bool {
		for _, p := range ps {
			if !p(o) {
				return false
			}
		}
		return true
	}
}
