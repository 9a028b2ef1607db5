// Package resilience provides a composable pipeline of resilience
// strategies for guarding calls to unreliable dependencies.
//
// A pipeline wraps a unit of work (an Operation) in an ordered chain of
// strategies. Each strategy owns its decision algorithm; composition order
// determines nesting and is an explicit design decision per use case.
//
// # Strategies
//
//   - Retry: re-invokes the delegate on handled failure, per a delay
//     schedule (constant, linear, exponential with jitter, or forever).
//
//   - Circuit Breaker: tracks a rolling failure ratio over a count-based
//     sliding window and fast-fails with ErrCircuitOpen while open.
//
//   - Timeout: bounds execution time, cooperatively or by abandoning the
//     delegate (forced mode).
//
//   - Fallback: substitutes a default outcome when the wrapped call's
//     outcome is handled as a failure.
//
//   - Bulkhead: bounds concurrent and queued in-flight calls, rejecting
//     with ErrBulkheadFull when capacity is exhausted.
//
//   - Rate Limiter: token-bucket limit on call rate.
//
// # Composition
//
// Strategies are added to a Builder in outer-to-inner order; the first
// added is outermost, the user delegate is innermost:
//
//	pipeline, err := resilience.NewBuilder[string]().
//	    AddFallback(resilience.FallbackConfig[string]{Value: "cached"}).
//	    AddTimeout(resilience.TimeoutConfig[string]{Timeout: time.Second}).
//	    AddRetry(resilience.RetryConfig[string]{
//	        MaxRetryAttempts: 3,
//	        ShouldHandle: resilience.And(
//	            resilience.HandleAll[string],
//	            resilience.Not(resilience.HandleErrors[string](resilience.ErrCircuitOpen)),
//	        ),
//	    }).
//	    AddCircuitBreaker(resilience.CircuitBreakerConfig[string]{
//	        FailureRatio:      0.5,
//	        MinimumThroughput: 10,
//	        BreakDuration:     5 * time.Second,
//	    }).
//	    Build()
//	if err != nil {
//	    // invalid strategy configuration
//	}
//
//	value, err := pipeline.Execute(ctx, func(ctx context.Context) (string, error) {
//	    return fetchFromRemote(ctx)
//	})
//
// The breaker sits inside the retry so the retry's ShouldHandle predicate
// can see ErrCircuitOpen and decline to retry against a circuit that has
// already decided to reject.
//
// # Outcomes and predicates
//
// Every strategy classifies results through a ShouldHandle Predicate over
// an Outcome. Outcomes the predicate rejects pass through untouched, which
// is how an inner strategy's distinguishable errors (ErrCircuitOpen,
// ErrTimeout, ErrBulkheadFull) reach the caller, or an outer fallback,
// unchanged. Context cancellation is never handled by default predicates
// and is never reclassified as a retriable failure.
package resilience
