// Package backendtest provides a recording backend for testing code built on
// the probe runtime.
package backendtest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/wire"
)

// Call is one recorded Fire.
type Call struct {
	Provider string
	Probe    string
	Args     []FiredArg
}

// FiredArg is a decoded copy of a fired argument. Text arguments are copied out
// of the borrowed memory so the record stays valid after the caller returns.
type FiredArg struct {
	Kind   wire.Kind
	Text   string
	Len    int
	Bits   uint64
	Absent bool
}

// Provider is the handle type returned by Recorder.CreateProvider.
type Provider struct {
	Name     string
	Probes   []*Probe
	Loaded   bool
	Released bool
}

// Probe is the handle type returned by Recorder.RegisterProbe.
type Probe struct {
	Provider *Provider
	Name     string
	Kinds    []wire.Kind

	active atomic.Bool
}

// Recorder is a thread-safe backend that counts every call, records fires and
// lets tests control probe activity and inject failures.
type Recorder struct {
	// MaxProbes and MaxArgs are reported by Limits. A zero MaxArgs means
	// backend.DefaultMaxArgs.
	MaxProbes int
	MaxArgs   int

	// Failure injection. A non-nil error is returned from the matching call.
	CreateErr error
	LoadErr   error
	// RegisterErr fails the RegisterProbe call whose probe name matches FailProbe,
	// or every call when FailProbe is empty.
	RegisterErr error
	FailProbe   string

	creates   atomic.Int64
	registers atomic.Int64
	loads     atomic.Int64
	releases  atomic.Int64
	actives   atomic.Int64

	mu        sync.Mutex
	providers []*Provider
	calls     []Call
	active    map[string]bool
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{active: make(map[string]bool)}
}

// Name returns "recorder".
func (r *Recorder) Name() string { return "recorder" }

// Limits reports MaxArgs and MaxProbes, using the default argument limit
// when MaxArgs is zero.
func (r *Recorder) Limits() backend.Limits {
	l := backend.Limits{MaxProbes: r.MaxProbes, MaxArgs: r.MaxArgs}
	if l.MaxArgs == 0 {
		l.MaxArgs = backend.DefaultMaxArgs
	}
	return l
}

// CreateProvider records a new provider or returns CreateErr.
func (r *Recorder) CreateProvider(name string) (backend.ProviderHandle, error) {
	r.creates.Add(1)
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	p := &Provider{Name: name}
	r.mu.Lock()
	r.providers = append(r.providers, p)
	r.mu.Unlock()
	return p, nil
}

// RegisterProbe records a probe or returns RegisterErr for FailProbe.
func (r *Recorder) RegisterProbe(h backend.ProviderHandle, name string, kinds []wire.Kind) (backend.ProbeHandle, error) {
	r.registers.Add(1)
	p, ok := h.(*Provider)
	if !ok {
		return nil, fmt.Errorf("%w: foreign provider handle %T", backend.ErrRegistration, h)
	}
	if r.RegisterErr != nil && (r.FailProbe == "" || r.FailProbe == name) {
		return nil, r.RegisterErr
	}
	probe := &Probe{Provider: p, Name: name, Kinds: append([]wire.Kind(nil), kinds...)}
	r.mu.Lock()
	p.Probes = append(p.Probes, probe)
	probe.active.Store(r.active[key(p.Name, name)])
	r.mu.Unlock()
	return probe, nil
}

// Load marks the provider loaded or returns LoadErr.
func (r *Recorder) Load(h backend.ProviderHandle) error {
	r.loads.Add(1)
	if r.LoadErr != nil {
		return r.LoadErr
	}
	if p, ok := h.(*Provider); ok {
		r.mu.Lock()
		p.Loaded = true
		r.mu.Unlock()
	}
	return nil
}

// IsActive reports the state set with SetActive.
func (r *Recorder) IsActive(h backend.ProbeHandle) bool {
	r.actives.Add(1)
	p, ok := h.(*Probe)
	return ok && p.active.Load()
}

// Fire records the call with its decoded arguments.
func (r *Recorder) Fire(h backend.ProbeHandle, args []wire.Arg) {
	p, ok := h.(*Probe)
	if !ok {
		return
	}
	call := Call{Provider: p.Provider.Name, Probe: p.Name, Args: make([]FiredArg, len(args))}
	for i, a := range args {
		call.Args[i] = FiredArg{Kind: a.Kind, Text: a.Text(), Len: a.Len, Bits: a.Bits, Absent: a.Absent()}
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

// Release marks the provider released.
func (r *Recorder) Release(h backend.ProviderHandle) {
	r.releases.Add(1)
	if p, ok := h.(*Provider); ok {
		r.mu.Lock()
		p.Released = true
		r.mu.Unlock()
	}
}

// SetActive marks provider:probe as attached. It applies to probes already
// registered and to ones registered later.
func (r *Recorder) SetActive(provider, probe string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[string]bool)
	}
	r.active[key(provider, probe)] = active
	for _, p := range r.providers {
		if p.Name != provider {
			continue
		}
		for _, pr := range p.Probes {
			if pr.Name == probe {
				pr.active.Store(active)
			}
		}
	}
}

// Calls returns a copy of every recorded fire.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Providers returns a copy of every created provider handle.
func (r *Recorder) Providers() []*Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Provider(nil), r.providers...)
}

// Creates returns the number of CreateProvider calls.
func (r *Recorder) Creates() int { return int(r.creates.Load()) }

// Registers returns the number of RegisterProbe calls.
func (r *Recorder) Registers() int { return int(r.registers.Load()) }

// Loads returns the number of Load calls.
func (r *Recorder) Loads() int { return int(r.loads.Load()) }

// Releases returns the number of Release calls.
func (r *Recorder) Releases() int { return int(r.releases.Load()) }

// ActiveChecks returns the number of IsActive calls.
func (r *Recorder) ActiveChecks() int { return int(r.actives.Load()) }

// Text builds the FiredArg a Text argument decodes to.
func Text(s string) FiredArg {
	return FiredArg{Kind: wire.Text, Text: s, Len: len(s)}
}

// OptionalText builds the FiredArg a present OptionalText argument decodes to.
func OptionalText(s string) FiredArg {
	return FiredArg{Kind: wire.OptionalText, Text: s, Len: len(s)}
}

// Absent builds the FiredArg an absent OptionalText argument decodes to.
func Absent() FiredArg {
	return FiredArg{Kind: wire.OptionalText, Absent: true}
}

func key(provider, probe string) string { return provider + ":" + probe }

var _ backend.Backend = (*Recorder)(nil)
