package backend

import "github.com/jonwraymond/probes/wire"

// Noop is a backend with no external visibility. Creation always succeeds, no
// probe is ever active, and Fire does nothing.
type Noop struct{}

// NewNoop returns the no-op backend.
func NewNoop() Noop { return Noop{} }

type noopHandle struct{}

// Name returns "noop".
func (Noop) Name() string { return "noop" }

// Limits reports the default argument limit and no provider limit.
func (Noop) Limits() Limits { return Limits{MaxArgs: DefaultMaxArgs} }

// CreateProvider always succeeds with an empty handle.
func (Noop) CreateProvider(string) (ProviderHandle, error) { return noopHandle{}, nil }

// RegisterProbe always succeeds with an empty handle.
func (Noop) RegisterProbe(ProviderHandle, string, []wire.Kind) (ProbeHandle, error) {
	return noopHandle{}, nil
}

// Load always succeeds.
func (Noop) Load(ProviderHandle) error { return nil }

// IsActive always reports false.
func (Noop) IsActive(ProbeHandle) bool { return false }

// Fire does nothing.
func (Noop) Fire(ProbeHandle, []wire.Arg) {}

// Release does nothing.
func (Noop) Release(ProviderHandle) {}

var _ Backend = Noop{}
