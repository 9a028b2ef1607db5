// Package health reports the health of dependencies guarded by resilience
// pipelines.
//
// A BreakerChecker reads a circuit breaker's state without generating any
// traffic; a ProbeChecker actively pings a dependency through a guarded
// pipeline so probes get the same protection as real calls. An Aggregator
// combines checkers per dependency and backs the HTTP probe handlers:
//
//	agg := health.NewAggregator()
//	agg.Register("pricing-api", health.NewBreakerChecker("pricing-api", breaker))
//
//	mux.HandleFunc("/healthz", health.LivenessHandler())
//	mux.HandleFunc("/readyz", health.ReadinessHandler(agg))
//	mux.HandleFunc("/health", health.DetailedHandler(agg))
package health
