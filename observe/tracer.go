package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProviderMeta describes a tracing provider for telemetry purposes.
type ProviderMeta struct {
	Name    string   // Provider name (required)
	Backend string   // Backend implementation, e.g. "stap" or "noop"
	Probes  []string // Declared probe names in declaration order
}

// SpanName returns the deterministic span name for initializing this provider.
// Format: probes.provider.init.<name>
func (m ProviderMeta) SpanName() string {
	return "probes.provider.init." + m.Name
}

// Validate reports whether the metadata is usable.
func (m ProviderMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingProviderName
	}
	return nil
}

func (m ProviderMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", m.Name),
	}
	if m.Backend != "" {
		attrs = append(attrs, attribute.String("provider.backend", m.Backend))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with provider-initialization spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span covering provider initialization.
	StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with provider metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.Int("provider.probe_count", len(meta.Probes)),
		attribute.Bool("provider.error", false),
	)
	if len(meta.Probes) > 0 {
		attrs = append(attrs, attribute.StringSlice("provider.probes", meta.Probes))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("provider.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
