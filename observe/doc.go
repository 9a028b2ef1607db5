// Package observe provides telemetry for guarded pipeline calls: structured
// logging, OpenTelemetry metrics and tracing, and a middleware that wraps a
// delegate with all three.
//
// The Observer facade owns provider lifecycles:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "catalog-gateway",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	defer obs.Shutdown(ctx)
//
// Middleware decorates the innermost delegate so each attempt gets its own
// span and duration sample:
//
//	mw, _ := observe.MiddlewareFromObserver(obs)
//	guarded := mw.Wrap(observe.CallMeta{Pipeline: "catalog", Target: "pricing-api"}, callPricing)
//
// Strategy hooks (retries, breaker transitions, rejections) record through
// the Metrics interface; see the resilience package's Instrument helpers.
package observe
