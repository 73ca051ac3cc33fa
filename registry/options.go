package registry

import (
	"sync/atomic"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/observe"
)

type options struct {
	backend  backend.Backend
	observer observe.Observer
}

// Option configures a Lazy.
type Option func(*options)

// WithBackend registers the provider against b instead of backend.System().
func WithBackend(b backend.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithObserver instruments initialization with obs instead of the default set
// through SetObserver.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

var defaultObserver atomic.Pointer[observe.Observer]

// SetObserver sets the Observer used by every Lazy created without
// WithObserver that has not initialized yet. A nil obs restores the no-op default.
func SetObserver(obs observe.Observer) {
	if obs == nil {
		defaultObserver.Store(nil)
		return
	}
	defaultObserver.Store(&obs)
}

func (o *options) middleware() *observe.Middleware {
	obs := o.observer
	if obs == nil {
		if p := defaultObserver.Load(); p != nil {
			obs = *p
		}
	}
	if obs == nil {
		return observe.NoopMiddleware()
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return observe.NoopMiddleware()
	}
	return mw
}
