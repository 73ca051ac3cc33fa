package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records provider initialization metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordInit records one provider initialization with its duration and outcome.
	RecordInit(ctx context.Context, meta ProviderMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	initCount    metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	probeCount   metric.Int64UpDownCounter
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	initCount, err := meter.Int64Counter(
		"probes.provider.init.total",
		metric.WithDescription("Total number of provider initializations"),
		metric.WithUnit("{init}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"probes.provider.init.errors",
		metric.WithDescription("Total number of failed provider initializations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"probes.provider.init.duration_ms",
		metric.WithDescription("Provider initialization duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	probeCount, err := meter.Int64UpDownCounter(
		"probes.provider.probes",
		metric.WithDescription("Number of probes registered with the tracing backend"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		initCount:    initCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		probeCount:   probeCount,
	}, nil
}

// RecordInit records metrics for a provider initialization.
func (m *metricsImpl) RecordInit(ctx context.Context, meta ProviderMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.initCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	} else {
		m.probeCount.Add(ctx, int64(len(meta.Probes)), opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordInit(ctx context.Context, meta ProviderMeta, duration time.Duration, err error) {
}
