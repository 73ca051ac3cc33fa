package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (*tracetest.SpanRecorder, Tracer) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, newTracer(tp.Tracer("test"))
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

// TestProviderMeta_SpanName verifies the span name format.
func TestProviderMeta_SpanName(t *testing.T) {
	meta := ProviderMeta{Name: "simple_probes"}
	if got := meta.SpanName(); got != "probes.provider.init.simple_probes" {
		t.Errorf("SpanName() = %q", got)
	}
}

func TestProviderMeta_Validate(t *testing.T) {
	if err := (ProviderMeta{}).Validate(); !errors.Is(err, ErrMissingProviderName) {
		t.Errorf("expected ErrMissingProviderName, got %v", err)
	}
	if err := (ProviderMeta{Name: "p"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	rec, tracer := newRecordingTracer()
	meta := ProviderMeta{Name: "simple_probes", Backend: "stap", Probes: []string{"hello", "greeting"}}

	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "probes.provider.init.simple_probes" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	attrs := attrMap(s.Attributes())
	if attrs["provider.name"].AsString() != "simple_probes" {
		t.Errorf("provider.name = %v", attrs["provider.name"])
	}
	if attrs["provider.backend"].AsString() != "stap" {
		t.Errorf("provider.backend = %v", attrs["provider.backend"])
	}
	if attrs["provider.probe_count"].AsInt64() != 2 {
		t.Errorf("provider.probe_count = %v", attrs["provider.probe_count"])
	}
	if attrs["provider.error"].AsBool() {
		t.Error("provider.error should be false")
	}
	if got := attrs["provider.probes"].AsStringSlice(); len(got) != 2 || got[1] != "greeting" {
		t.Errorf("provider.probes = %v", got)
	}
}

// TestTracer_ErrorStatus verifies a failed init marks the span.
func TestTracer_ErrorStatus(t *testing.T) {
	rec, tracer := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), ProviderMeta{Name: "broken"})
	tracer.EndSpan(span, errors.New("registration failed"))

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "registration failed" {
		t.Errorf("description = %q", s.Status().Description)
	}
	if !attrMap(s.Attributes())["provider.error"].AsBool() {
		t.Error("provider.error should be true")
	}
	if len(s.Events()) == 0 || s.Events()[0].Name != "exception" {
		t.Error("expected the error to be recorded as an event")
	}
}
