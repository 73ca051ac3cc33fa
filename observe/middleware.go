package observe

import (
	"context"
	"time"
)

// InitFunc performs one provider initialization.
type InitFunc func(ctx context.Context, meta ProviderMeta) error

// Middleware wraps provider initialization with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe InitFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NoopMiddleware returns a Middleware that records nothing.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}

// Wrap wraps an InitFunc with a span, init metrics and one log line.
func (m *Middleware) Wrap(fn InitFunc) InitFunc {
	return func(ctx context.Context, meta ProviderMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordInit(ctx, meta, duration, err)

		logger := m.logger.WithProvider(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err})
			logger.Warn(ctx, "provider initialization failed; probes disabled", fields...)
		} else {
			logger.Info(ctx, "provider registered", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
