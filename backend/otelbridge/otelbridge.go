// Package otelbridge is a probe backend that turns fires into OpenTelemetry
// spans and counter increments, for hosts where no USDT tool can attach.
//
// Probes start inactive, as if no tool were attached. Enable and EnableAll
// play the role of attaching a tool; only enabled probes are exported.
package otelbridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/wire"
)

const instrumentationName = "github.com/jonwraymond/probes/backend/otelbridge"

// ErrUnknownProbe indicates Enable or Disable named a probe that is not loaded.
var ErrUnknownProbe = errors.New("otelbridge: unknown probe")

type options struct {
	tp trace.TracerProvider
	mp metric.MeterProvider
}

// Option configures a Backend.
type Option func(*options)

// WithTracerProvider sets the tracer provider. Default: otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// WithMeterProvider sets the meter provider. Default: otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

type providerHandle struct {
	name     string
	probes   []*probeHandle
	loaded   bool
	released bool
}

type probeHandle struct {
	provider string
	name     string
	spanName string
	attrs    metric.MeasurementOption
	active   atomic.Bool
}

// Backend exports fires of enabled probes through OpenTelemetry.
type Backend struct {
	tracer trace.Tracer
	fires  metric.Int64Counter

	mu     sync.Mutex
	loaded map[string]*providerHandle
}

var _ backend.Backend = (*Backend)(nil)

// New creates a Backend.
func New(opts ...Option) (*Backend, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}
	if o.mp == nil {
		o.mp = otel.GetMeterProvider()
	}

	fires, err := o.mp.Meter(instrumentationName).Int64Counter(
		"probes.fire",
		metric.WithDescription("Number of probe fires exported while enabled"),
		metric.WithUnit("{fire}"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrBackendUnavailable, err)
	}

	return &Backend{
		tracer: o.tp.Tracer(instrumentationName),
		fires:  fires,
		loaded: make(map[string]*providerHandle),
	}, nil
}

// Name returns "otel".
func (b *Backend) Name() string { return "otel" }

// Limits matches the native backend so declarations stay portable.
func (b *Backend) Limits() backend.Limits {
	return backend.Limits{MaxArgs: backend.DefaultMaxArgs}
}

func (b *Backend) CreateProvider(name string) (backend.ProviderHandle, error) {
	return &providerHandle{name: name}, nil
}

func (b *Backend) RegisterProbe(p backend.ProviderHandle, name string, _ []wire.Kind) (backend.ProbeHandle, error) {
	ph, ok := p.(*providerHandle)
	if !ok || ph.loaded || ph.released {
		return nil, fmt.Errorf("%w: invalid provider handle", backend.ErrRegistration)
	}
	probe := &probeHandle{
		provider: ph.name,
		name:     name,
		spanName: "probe " + ph.name + ":" + name,
		attrs: metric.WithAttributes(
			attribute.String("provider.name", ph.name),
			attribute.String("probe.name", name),
		),
	}
	ph.probes = append(ph.probes, probe)
	return probe, nil
}

func (b *Backend) Load(p backend.ProviderHandle) error {
	ph, ok := p.(*providerHandle)
	if !ok || ph.released {
		return fmt.Errorf("%w: invalid provider handle", backend.ErrRegistration)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.loaded[ph.name]; dup {
		return fmt.Errorf("%w: provider %q already loaded", backend.ErrRegistration, ph.name)
	}
	ph.loaded = true
	b.loaded[ph.name] = ph
	return nil
}

func (b *Backend) IsActive(probe backend.ProbeHandle) bool {
	h, ok := probe.(*probeHandle)
	return ok && h.active.Load()
}

// Fire records one zero-length span carrying the arguments and increments the
// fire counter.
func (b *Backend) Fire(probe backend.ProbeHandle, args []wire.Arg) {
	h, ok := probe.(*probeHandle)
	if !ok {
		return
	}

	_, span := b.tracer.Start(context.Background(), h.spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(argAttributes(h, args)...),
	)
	span.End()
	b.fires.Add(context.Background(), 1, h.attrs)
}

func (b *Backend) Release(p backend.ProviderHandle) {
	ph, ok := p.(*providerHandle)
	if !ok || ph.released {
		return
	}
	ph.released = true
	for _, probe := range ph.probes {
		probe.active.Store(false)
	}

	b.mu.Lock()
	if b.loaded[ph.name] == ph {
		delete(b.loaded, ph.name)
	}
	b.mu.Unlock()
}

// Enable attaches to provider:probe so its fires are exported.
func (b *Backend) Enable(provider, probe string) error {
	return b.setActive(provider, probe, true)
}

// Disable detaches from provider:probe.
func (b *Backend) Disable(provider, probe string) error {
	return b.setActive(provider, probe, false)
}

// EnableAll attaches to every probe of every loaded provider.
func (b *Backend) EnableAll() {
	b.setAll(true)
}

// DisableAll detaches from every probe.
func (b *Backend) DisableAll() {
	b.setAll(false)
}

func (b *Backend) setActive(provider, probe string, active bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ph, ok := b.loaded[provider]; ok {
		for _, h := range ph.probes {
			if h.name == probe {
				h.active.Store(active)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s:%s", ErrUnknownProbe, provider, probe)
}

func (b *Backend) setAll(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ph := range b.loaded {
		for _, h := range ph.probes {
			h.active.Store(active)
		}
	}
}

var argKeys = func() [backend.DefaultMaxArgs]string {
	var keys [backend.DefaultMaxArgs]string
	for i := range keys {
		keys[i] = "probe.arg" + strconv.Itoa(i)
	}
	return keys
}()

func argKey(i int) string {
	if i < len(argKeys) {
		return argKeys[i]
	}
	return "probe.arg" + strconv.Itoa(i)
}

// argAttributes decodes the borrowed arguments into owned attribute values.
// Absent optional text produces no attribute.
func argAttributes(h *probeHandle, args []wire.Arg) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(args)+2)
	attrs = append(attrs,
		attribute.String("provider.name", h.provider),
		attribute.String("probe.name", h.name),
	)
	for i, a := range args {
		key := argKey(i)
		switch a.Kind {
		case wire.Text, wire.OptionalText:
			if a.Absent() {
				continue
			}
			attrs = append(attrs, attribute.String(key, strings.Clone(a.Text())))
		case wire.Bool:
			attrs = append(attrs, attribute.Bool(key, a.Bits != 0))
		case wire.Uint64:
			attrs = append(attrs, attribute.String(key, strconv.FormatUint(a.Bits, 10)))
		case wire.Uint8, wire.Uint16, wire.Uint32:
			attrs = append(attrs, attribute.Int64(key, int64(a.Bits)))
		default:
			attrs = append(attrs, attribute.Int64(key, a.Int()))
		}
	}
	return attrs
}
