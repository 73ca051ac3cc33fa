package registry

import (
	"context"

	"github.com/jonwraymond/probes/health"
)

// Check reports the initialization state without triggering initialization.
func (l *Lazy) Check(ctx context.Context) health.Result {
	details := map[string]any{"state": l.State().String()}

	switch l.State() {
	case Registered:
		p := l.provider
		details["backend"] = p.Backend()
		details["probes"] = p.Len()
		return health.Healthy("provider registered").WithDetails(details)
	case Failed:
		return health.Unhealthy("provider initialization failed; probes disabled", l.err).WithDetails(details)
	default:
		return health.Degraded("provider not initialized").WithDetails(details)
	}
}

var _ health.Checker = (*Lazy)(nil)

// RegisterHealth adds every indexed provider to agg under its name.
func RegisterHealth(agg *health.Aggregator) {
	for _, l := range All() {
		agg.Register(l.Name(), l)
	}
}
