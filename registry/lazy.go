package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/observe"
	"github.com/jonwraymond/probes/provider"
)

// State is the initialization state of a Lazy.
type State int32

const (
	// Uninitialized means nothing has asked for the provider yet.
	Uninitialized State = iota
	// Initializing means registration is running on some goroutine.
	Initializing
	// Registered means the provider was built and loaded.
	Registered
	// Failed means registration failed; the error is cached for good.
	Failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Registered:
		return "registered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lazy is a provider declaration whose registration runs at most once.
//
// Contract:
//   - Concurrency: every method is safe for concurrent use. Concurrent first
//     callers block until the single initialization finishes.
//   - Errors: the initialization result is cached; InitError and Init return
//     the identical error value on every call.
//   - After initialization all reads are lock-free.
type Lazy struct {
	name   string
	define func(*provider.Builder)
	opts   options

	once     sync.Once
	state    atomic.Int32
	resolved atomic.Bool

	// Written once inside once.Do, before resolved is set.
	provider *provider.Provider
	err      error
}

// New declares a provider named name whose probes are added by define. The
// provider is not registered until first use. The returned Lazy is added to
// the process index.
func New(name string, define func(*provider.Builder), opts ...Option) *Lazy {
	l := &Lazy{name: name, define: define}
	for _, opt := range opts {
		opt(&l.opts)
	}
	add(l)
	return l
}

// Name returns the declared provider name.
func (l *Lazy) Name() string {
	return l.name
}

// State returns the current initialization state.
func (l *Lazy) State() State {
	return State(l.state.Load())
}

// Get returns the provider, initializing it on first use. It returns nil when
// initialization failed; a nil *provider.Provider is safe to use.
func (l *Lazy) Get() *provider.Provider {
	if !l.resolved.Load() {
		l.initialize(context.Background())
	}
	return l.provider
}

// Probe returns the i-th declared probe. It is the fast path for generated
// call sites, which know their probe indexes statically.
func (l *Lazy) Probe(i int) *provider.Probe {
	return l.Get().ProbeAt(i)
}

// Init forces initialization and returns its cached error.
func (l *Lazy) Init() error {
	return l.InitContext(context.Background())
}

// InitContext is Init with a context for the initialization span. The context
// only matters to the caller that actually runs initialization.
func (l *Lazy) InitContext(ctx context.Context) error {
	if !l.resolved.Load() {
		l.initialize(ctx)
	}
	return l.err
}

// InitError returns the cached initialization error. It never triggers
// initialization and returns nil while uninitialized.
func (l *Lazy) InitError() error {
	if !l.resolved.Load() {
		return nil
	}
	return l.err
}

func (l *Lazy) initialize(ctx context.Context) {
	l.once.Do(func() {
		l.state.Store(int32(Initializing))
		defer func() {
			if r := recover(); r != nil {
				l.provider = nil
				l.err = fmt.Errorf("%w: initializing provider %q panicked: %v", backend.ErrRegistration, l.name, r)
			}
			if l.err != nil {
				l.state.Store(int32(Failed))
			} else {
				l.state.Store(int32(Registered))
			}
			l.resolved.Store(true)
		}()

		l.provider, l.err = l.build(ctx)
	})
}

func (l *Lazy) build(ctx context.Context) (*provider.Provider, error) {
	b := provider.NewBuilder(l.opts.backend)
	defineErr := l.runDefine(b)

	meta := observe.ProviderMeta{
		Name:    l.name,
		Backend: b.BackendName(),
		Probes:  b.ProbeNames(),
	}

	var p *provider.Provider
	err := l.opts.middleware().Wrap(func(ctx context.Context, meta observe.ProviderMeta) error {
		if defineErr != nil {
			return defineErr
		}
		var err error
		p, err = b.Build(meta.Name)
		return err
	})(ctx, meta)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// runDefine calls the declaration callback, turning a panic into an error.
func (l *Lazy) runDefine(b *provider.Builder) (err error) {
	if l.define == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: defining provider %q panicked: %v", backend.ErrConfiguration, l.name, r)
		}
	}()
	l.define(b)
	return nil
}
