package provider

import (
	"sync/atomic"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/wire"
)

// Probe is one named trace point with a fixed ordered argument signature.
//
// Contract:
//   - Concurrency: safe for concurrent use; firing takes no locks.
//   - Errors: firing never panics and never reports errors. Arguments that do
//     not match the signature are dropped and counted.
//   - Nil: a nil *Probe is never enabled and Fire is a no-op.
type Probe struct {
	name     string
	provider string
	kinds    []wire.Kind
	backend  backend.Backend
	handle   backend.ProbeHandle
	dropped  atomic.Uint64
}

// Name returns the probe name.
func (p *Probe) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Provider returns the name of the owning provider.
func (p *Probe) Provider() string {
	if p == nil {
		return ""
	}
	return p.provider
}

// Kinds returns a copy of the argument signature.
func (p *Probe) Kinds() []wire.Kind {
	if p == nil {
		return nil
	}
	return append([]wire.Kind(nil), p.kinds...)
}

// Enabled reports whether a tool is attached right now. The answer comes from
// the backend on every call and is never cached.
func (p *Probe) Enabled() bool {
	return p != nil && p.backend.IsActive(p.handle)
}

// Fire emits the probe if it is enabled.
//
// Go evaluates the arguments before the call, so when building them is
// expensive guard the call with Enabled or use FireFunc:
//
//	if probe.Enabled() {
//		probe.Fire(wire.TextOf(expensive()))
//	}
func (p *Probe) Fire(args ...wire.Arg) {
	if !p.Enabled() {
		return
	}
	p.emit(args)
}

// FireFunc emits the probe with the arguments returned by fn. fn is called
// only when the probe is enabled.
func (p *Probe) FireFunc(fn func() []wire.Arg) {
	if !p.Enabled() {
		return
	}
	p.emit(fn())
}

// Dropped returns how many fires were discarded for not matching the signature.
func (p *Probe) Dropped() uint64 {
	if p == nil {
		return 0
	}
	return p.dropped.Load()
}

func (p *Probe) emit(args []wire.Arg) {
	if !matches(p.kinds, args) {
		p.dropped.Add(1)
		return
	}
	p.backend.Fire(p.handle, args)
}

// matches is wire.Validate without the error allocation.
func matches(kinds []wire.Kind, args []wire.Arg) bool {
	if len(kinds) != len(args) {
		return false
	}
	for i, k := range kinds {
		if !k.Accepts(args[i].Kind) {
			return false
		}
	}
	return true
}
