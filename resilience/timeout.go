package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutMode selects how the strategy treats a delegate that overruns.
type TimeoutMode int

const (
	// TimeoutForced returns ErrTimeout at the deadline while the delegate
	// keeps running detached. The abandoned result is never re-joined; it
	// is observed only through the OnAbandoned hook.
	TimeoutForced TimeoutMode = iota
	// TimeoutCooperative relies on the delegate observing the child
	// context and returning promptly once it fires.
	TimeoutCooperative
)

// TimeoutEvent is passed to the OnTimeout hook when the deadline fires.
type TimeoutEvent struct {
	// Timeout is the configured bound that was exceeded.
	Timeout time.Duration
}

// TimeoutConfig configures a timeout strategy.
type TimeoutConfig[R any] struct {
	// Timeout bounds the wrapped call's execution time. Must be positive;
	// zero or negative is a configuration error.
	Timeout time.Duration

	// Mode selects forced or cooperative discipline.
	// Default: TimeoutForced
	Mode TimeoutMode

	// OnTimeout is invoked when the deadline fires. Observer only.
	OnTimeout func(TimeoutEvent)

	// OnAbandoned receives the detached delegate's eventual outcome under
	// forced mode, for diagnostics only. It runs on the abandoned
	// goroutine and must not panic.
	OnAbandoned func(Outcome[R])
}

// Timeout bounds execution time of the wrapped delegate. Stateless across
// calls; each execution derives its own child deadline from the parent
// context, so parent cancellation always wins.
type Timeout[R any] struct {
	config TimeoutConfig[R]
}

// NewTimeout creates a timeout strategy. A non-positive Timeout is rejected.
func NewTimeout[R any](config TimeoutConfig[R]) (*Timeout[R], error) {
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("resilience: timeout must be positive, got %v", config.Timeout)
	}
	return &Timeout[R]{config: config}, nil
}

// Execute runs the delegate under the configured deadline.
func (t *Timeout[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	child, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	if t.config.Mode == TimeoutCooperative {
		return t.executeCooperative(ctx, child, op)
	}
	return t.executeForced(ctx, child, op)
}

// executeCooperative trusts the delegate to observe the child context.
func (t *Timeout[R]) executeCooperative(parent, child context.Context, op Operation[R]) (R, error) {
	value, err := op(child)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		// The child deadline fired, not the parent's: classify as timeout.
		t.timedOut()
		var zero R
		return zero, ErrTimeout
	}
	return value, err
}

// executeForced abandons the delegate at the deadline. The result channel is
// buffered so the detached goroutine can always complete and exit.
func (t *Timeout[R]) executeForced(parent, child context.Context, op Operation[R]) (R, error) {
	// Buffered so the detached goroutine can always deliver and exit.
	done := make(chan Outcome[R], 1)

	go func() {
		value, err := op(child)
		done <- Outcome[R]{Value: value, Err: err}
	}()

	select {
	case outcome := <-done:
		if outcome.Err != nil && errors.Is(outcome.Err, context.DeadlineExceeded) && parent.Err() == nil {
			t.timedOut()
			var zero R
			return zero, ErrTimeout
		}
		return outcome.Unpack()

	case <-child.Done():
		if t.config.OnAbandoned != nil {
			// Fire-and-forget completion observer; never re-joined on the
			// calling path.
			go func() {
				t.config.OnAbandoned(<-done)
			}()
		}
		if parent.Err() != nil {
			// Parent cancellation, not a timeout. Never reclassified.
			var zero R
			return zero, parent.Err()
		}
		t.timedOut()
		var zero R
		return zero, ErrTimeout
	}
}

func (t *Timeout[R]) timedOut() {
	if t.config.OnTimeout != nil {
		t.config.OnTimeout(TimeoutEvent{Timeout: t.config.Timeout})
	}
}

// Config returns the applied configuration.
func (t *Timeout[R]) Config() TimeoutConfig[R] {
	return t.config
}
