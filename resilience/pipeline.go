package resilience

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Strategy is one layer of a pipeline. A strategy either fully resolves an
// outcome or returns it unchanged for the next outer strategy to judge; it
// must never swallow an outcome it did not classify as handled.
type Strategy[R any] interface {
	Execute(ctx context.Context, op Operation[R]) (R, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc[R any] func(ctx context.Context, op Operation[R]) (R, error)

// Execute implements Strategy.
func (f StrategyFunc[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	return f(ctx, op)
}

// Builder assembles a pipeline from strategies. The first strategy added is
// outermost, wrapping everything added after it, with the user delegate
// innermost.
//
// Ordering is a per-use-case design decision. Two orders recur:
//
//	AddRetry(...).AddCircuitBreaker(...)   // retry outside the breaker, so
//	                                       // the retry predicate can see and
//	                                       // exclude ErrCircuitOpen
//	AddTimeout(...).AddRetry(...)          // one bound over the whole call
//	                                       // including all its retries
//	AddRetry(...).AddTimeout(...)          // a fresh bound per attempt
type Builder[R any] struct {
	strategies []Strategy[R]
	errs       []error
}

// NewBuilder creates an empty pipeline builder.
func NewBuilder[R any]() *Builder[R] {
	return &Builder[R]{}
}

// Add appends a custom strategy to the chain.
func (b *Builder[R]) Add(s Strategy[R]) *Builder[R] {
	b.strategies = append(b.strategies, s)
	return b
}

// AddRetry appends a retry strategy.
func (b *Builder[R]) AddRetry(config RetryConfig[R]) *Builder[R] {
	return b.Add(NewRetry(config))
}

// AddCircuitBreaker appends a new circuit breaker. For a breaker shared
// between pipelines or inspected externally, construct it yourself and
// pass it to Add.
func (b *Builder[R]) AddCircuitBreaker(config CircuitBreakerConfig[R]) *Builder[R] {
	return b.Add(NewCircuitBreaker(config))
}

// AddTimeout appends a timeout strategy. An invalid timeout surfaces from
// Build.
func (b *Builder[R]) AddTimeout(config TimeoutConfig[R]) *Builder[R] {
	t, err := NewTimeout(config)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Add(t)
}

// AddFallback appends a fallback strategy.
func (b *Builder[R]) AddFallback(config FallbackConfig[R]) *Builder[R] {
	return b.Add(NewFallback(config))
}

// AddBulkhead appends a new bulkhead. As with breakers, a bulkhead shared
// across pipelines should be constructed once and passed to Add.
func (b *Builder[R]) AddBulkhead(config BulkheadConfig) *Builder[R] {
	return b.Add(NewBulkhead[R](config))
}

// AddRateLimiter appends a new rate limiter.
func (b *Builder[R]) AddRateLimiter(config RateLimiterConfig) *Builder[R] {
	return b.Add(NewRateLimiter[R](config))
}

// Build returns the composed pipeline, or the accumulated configuration
// errors. The pipeline is immutable and re-entrant; only breaker and
// bulkhead instances carry cross-call state.
func (b *Builder[R]) Build() (*Pipeline[R], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	strategies := make([]Strategy[R], len(b.strategies))
	copy(strategies, b.strategies)

	return &Pipeline[R]{strategies: strategies}, nil
}

// Pipeline is an ordered composition of strategies around a unit of work.
// Built once, invoked repeatedly; safe for concurrent independent calls.
type Pipeline[R any] struct {
	strategies []Strategy[R]
}

// Execute runs the delegate through the whole strategy chain. A single
// cancellation signal threads through the chain: strategies may derive
// tighter child contexts but always honor the parent's.
func (p *Pipeline[R]) Execute(ctx context.Context, op Operation[R]) (R, error) {
	ctx = withExecutionID(ctx)

	// Compose inside out: the last strategy added wraps the delegate
	// directly, the first wraps everything.
	execute := op
	for i := len(p.strategies) - 1; i >= 0; i-- {
		strategy := p.strategies[i]
		inner := execute
		execute = func(ctx context.Context) (R, error) {
			return strategy.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// ExecuteOutcome runs the chain and returns the result as an Outcome.
func (p *Pipeline[R]) ExecuteOutcome(ctx context.Context, op Operation[R]) Outcome[R] {
	value, err := p.Execute(ctx, op)
	return Outcome[R]{Value: value, Err: err}
}

// ExecuteAsync runs the chain on its own goroutine and delivers the outcome
// on the returned channel. The channel is buffered, so the outcome is never
// lost even if the caller stops receiving. Cancel ctx to abort the execution.
func (p *Pipeline[R]) ExecuteAsync(ctx context.Context, op Operation[R]) <-chan Outcome[R] {
	out := make(chan Outcome[R], 1)
	go func() {
		out <- p.ExecuteOutcome(ctx, op)
		close(out)
	}()
	return out
}

// Len returns the number of strategies in the chain.
func (p *Pipeline[R]) Len() int {
	return len(p.strategies)
}

type executionIDKey struct{}

// withExecutionID stamps the context with a fresh execution ID, unless one
// is already present (nested pipelines share the outermost ID).
func withExecutionID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(executionIDKey{}).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, executionIDKey{}, uuid.NewString())
}

// ExecutionID returns the pipeline execution ID threaded through hooks and
// telemetry, or "" outside a pipeline execution.
func ExecutionID(ctx context.Context) string {
	id, _ := ctx.Value(executionIDKey{}).(string)
	return id
}
