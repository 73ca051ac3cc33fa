package provider

import "github.com/jonwraymond/probes/backend"

// Provider is a backend-registered, immutable set of probes. It owns its
// native handle for the rest of the process lifetime; there is no unload.
//
// A nil *Provider is valid and behaves as a provider whose probes are never
// enabled, so call sites never special-case a failed initialization.
type Provider struct {
	name    string
	backend backend.Backend
	handle  backend.ProviderHandle
	probes  []*Probe
	index   map[string]*Probe
}

// Name returns the provider name.
func (p *Provider) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Backend returns the name of the backend the provider is registered with.
func (p *Provider) Backend() string {
	if p == nil {
		return ""
	}
	return p.backend.Name()
}

// Probes returns the probes in declaration order.
func (p *Provider) Probes() []*Probe {
	if p == nil {
		return nil
	}
	out := make([]*Probe, len(p.probes))
	copy(out, p.probes)
	return out
}

// Len returns the number of probes.
func (p *Provider) Len() int {
	if p == nil {
		return 0
	}
	return len(p.probes)
}

// Probe returns the named probe, or nil.
func (p *Provider) Probe(name string) *Probe {
	if p == nil {
		return nil
	}
	return p.index[name]
}

// ProbeAt returns the i-th declared probe, or nil when out of range.
func (p *Provider) ProbeAt(i int) *Probe {
	if p == nil || i < 0 || i >= len(p.probes) {
		return nil
	}
	return p.probes[i]
}
