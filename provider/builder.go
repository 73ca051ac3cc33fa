package provider

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/wire"
)

type probeDecl struct {
	name  string
	kinds []wire.Kind
}

// Builder accumulates probe definitions before a provider is created.
//
// Contract:
//   - Concurrency: a Builder is not safe for concurrent use.
//   - Errors: the first AddProbe error sticks and is returned by Build; later
//     AddProbe calls are ignored.
type Builder struct {
	backend backend.Backend
	limits  backend.Limits
	probes  []probeDecl
	seen    map[string]struct{}
	err     error
}

// NewBuilder returns a Builder registering against b. A nil b means backend.System().
func NewBuilder(b backend.Backend) *Builder {
	if b == nil {
		b = backend.System()
	}
	return &Builder{
		backend: b,
		limits:  b.Limits(),
		seen:    make(map[string]struct{}),
	}
}

// AddProbe declares a probe with the given ordered argument kinds.
func (b *Builder) AddProbe(name string, kinds ...wire.Kind) *Builder {
	if b.err != nil {
		return b
	}

	if err := validName(name); err != nil {
		b.err = fmt.Errorf("%w: probe name %q: %v", backend.ErrRegistration, name, err)
		return b
	}
	if _, dup := b.seen[name]; dup {
		b.err = fmt.Errorf("%w: probe %q declared twice", backend.ErrRegistration, name)
		return b
	}
	if err := wire.ValidateKinds(kinds); err != nil {
		b.err = fmt.Errorf("%w: probe %q: %w", backend.ErrConfiguration, name, err)
		return b
	}
	if len(kinds) > b.limits.MaxArgs {
		b.err = fmt.Errorf("%w: probe %q has %d arguments, limit is %d",
			backend.ErrRegistration, name, len(kinds), b.limits.MaxArgs)
		return b
	}
	if b.limits.MaxProbes > 0 && len(b.probes) >= b.limits.MaxProbes {
		b.err = fmt.Errorf("%w: more than %d probes", backend.ErrRegistration, b.limits.MaxProbes)
		return b
	}

	b.seen[name] = struct{}{}
	b.probes = append(b.probes, probeDecl{name: name, kinds: append([]wire.Kind(nil), kinds...)})
	return b
}

// ProbeNames returns the declared probe names in declaration order.
func (b *Builder) ProbeNames() []string {
	out := make([]string, len(b.probes))
	for i, decl := range b.probes {
		out[i] = decl.name
	}
	return out
}

// BackendName returns the name of the backend the builder registers against.
func (b *Builder) BackendName() string {
	return b.backend.Name()
}

// Err returns the first error recorded by AddProbe.
func (b *Builder) Err() error {
	return b.err
}

// Build registers the declared probes under the provider name and loads the
// provider. It is all-or-nothing: on any failure every native resource created
// so far is released, the name is freed, and no Provider is returned.
func (b *Builder) Build(name string) (*Provider, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("%w: provider name %q: %v", backend.ErrRegistration, name, err)
	}
	if err := reserve(name); err != nil {
		return nil, err
	}

	p, err := b.build(name)
	if err != nil {
		release(name)
		return nil, err
	}
	return p, nil
}

// build runs the backend sequence. A backend panic is returned as a
// registration error after the native handle is released.
func (b *Builder) build(name string) (p *Provider, err error) {
	var handle backend.ProviderHandle
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		p, err = nil, fmt.Errorf("%w: backend %s panicked building provider %q: %v",
			backend.ErrRegistration, b.backend.Name(), name, r)
		if handle != nil {
			b.releaseQuietly(handle)
		}
	}()

	handle, err = b.backend.CreateProvider(name)
	if err != nil {
		return nil, fmt.Errorf("create provider %q: %w", name, classify(err))
	}

	p = &Provider{
		name:    name,
		backend: b.backend,
		handle:  handle,
		probes:  make([]*Probe, 0, len(b.probes)),
		index:   make(map[string]*Probe, len(b.probes)),
	}

	for _, decl := range b.probes {
		ph, err := b.backend.RegisterProbe(handle, decl.name, decl.kinds)
		if err != nil {
			b.backend.Release(handle)
			return nil, fmt.Errorf("register probe %s:%s: %w", name, decl.name, classify(err))
		}
		probe := &Probe{
			name:     decl.name,
			provider: name,
			kinds:    decl.kinds,
			backend:  b.backend,
			handle:   ph,
		}
		p.probes = append(p.probes, probe)
		p.index[decl.name] = probe
	}

	if err := b.backend.Load(handle); err != nil {
		b.backend.Release(handle)
		return nil, fmt.Errorf("load provider %q: %w", name, classify(err))
	}
	return p, nil
}

// releaseQuietly releases handle, ignoring a second panic from the backend.
func (b *Builder) releaseQuietly(handle backend.ProviderHandle) {
	defer func() { _ = recover() }()
	b.backend.Release(handle)
}

// classify makes sure a backend failure matches one of the taxonomy errors.
// Anything the backend did not classify itself counts as a registration error.
func classify(err error) error {
	if errors.Is(err, backend.ErrBackendUnavailable) || errors.Is(err, backend.ErrRegistration) {
		return err
	}
	return fmt.Errorf("%w: %w", backend.ErrRegistration, err)
}
