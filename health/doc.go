// Package health reports whether the probe runtime came up the way the
// operator expected.
//
// Provider initialization never fails the host program: a provider that
// could not register simply has no enabled probes. That makes failures
// silent by design, so this package surfaces them. Every registry entry is a
// Checker; the backend itself is checked against the implementation CI
// expects to have been compiled in.
//
// # Statuses
//
// A registered provider is Healthy, one that failed is Unhealthy with the
// cached init error, and one not yet initialized is Degraded.
//
// # Aggregating
//
//	agg := health.NewAggregator()
//	agg.Register("backend", health.NewBackendChecker(backend.System()))
//	for _, l := range registry.All() {
//		agg.Register(l.Name(), l)
//	}
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg) // /healthz, /readyz, /health
package health
