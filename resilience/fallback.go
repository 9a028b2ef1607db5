package resilience

import (
	"context"
)

// FallbackEvent is passed to the OnFallback hook before the substitute is
// produced.
type FallbackEvent[R any] struct {
	// Outcome is the handled failure being substituted.
	Outcome Outcome[R]
}

// FallbackConfig configures a fallback strategy.
type FallbackConfig[R any] struct {
	// ShouldHandle classifies which outcomes get substituted. Chaining
	// several fallback strategies with narrowing predicates (most specific
	// innermost, catch-all outermost) lets a pipeline tailor substitutes
	// per cause while still never surfacing a raw failure.
	// Default: HandleAll.
	ShouldHandle Predicate[R]

	// Action lazily produces the substitute outcome. If the action itself
	// fails, that failure propagates; it is not caught recursively.
	// Exactly one of Action or Value must express the substitute; when
	// Action is nil, Value is returned.
	Action func(ctx context.Context, outcome Outcome[R]) (R, error)

	// Value is the static substitute used when Action is nil.
	Value R

	// OnFallback is invoked before the substitute is produced. Observer
	// only.
	OnFallback func(FallbackEvent[R])
}

// Fallback substitutes a default outcome when the wrapped call's outcome is
// handled as a failure. Stateless; safe to share across concurrent calls.
type Fallback[R any] struct {
	config FallbackConfig[R]
}

// NewFallback creates a fallback strategy with defaults applied.
func NewFallback[R any](config FallbackConfig[R]) *Fallback[R] {
	if config.ShouldHandle == nil {
		config.ShouldHandle = HandleAll[R]
	}
	return &Fallback[R]{config: config}
}

// Execute runs the delegate and substitutes the configured outcome when the
// result is handled. Non-handled outcomes pass through unchanged, including
// cancellation.
func (f *Fallback[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	value, err := op(ctx)
	outcome := Outcome[R]{Value: value, Err: err}

	if !f.config.ShouldHandle(outcome) {
		return value, err
	}

	if f.config.OnFallback != nil {
		f.config.OnFallback(FallbackEvent[R]{Outcome: outcome})
	}

	if f.config.Action != nil {
		return f.config.Action(ctx, outcome)
	}
	return f.config.Value, nil
}

// Config returns the applied configuration.
func (f *Fallback[R]) Config() FallbackConfig[R] {
	return f.config
}
