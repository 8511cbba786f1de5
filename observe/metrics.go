package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pipeline metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordSearch records one dispatched provider search.
	RecordSearch(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLookup records a cache lookup in the given domain.
	RecordLookup(ctx context.Context, domain string, hit bool)

	// RecordSuppressed records a fetch suppressed by the guard window.
	RecordSuppressed(ctx context.Context, meta OpMeta)
}

type metricsImpl struct {
	searchCount     metric.Int64Counter
	searchErrors    metric.Int64Counter
	searchDuration  metric.Float64Histogram
	lookupCount     metric.Int64Counter
	suppressedCount metric.Int64Counter
}

// NewMetrics creates the pipeline instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.searchCount, err = meter.Int64Counter(
		"mediaquery.search.total",
		metric.WithDescription("Total number of dispatched provider searches"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.searchErrors, err = meter.Int64Counter(
		"mediaquery.search.errors",
		metric.WithDescription("Total number of failed provider searches"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.searchDuration, err = meter.Float64Histogram(
		"mediaquery.search.duration_ms",
		metric.WithDescription("Provider search duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.lookupCount, err = meter.Int64Counter(
		"mediaquery.cache.lookups",
		metric.WithDescription("Cache lookups by domain and result"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.suppressedCount, err = meter.Int64Counter(
		"mediaquery.guard.suppressed",
		metric.WithDescription("Fetches suppressed inside the guard window"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordSearch(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.searchCount.Add(ctx, 1, opt)
	if err != nil {
		m.searchErrors.Add(ctx, 1, opt)
	}
	m.searchDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordLookup(ctx context.Context, domain string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op.domain", domain),
		attribute.String("result", result),
	))
}

func (m *metricsImpl) RecordSuppressed(ctx context.Context, meta OpMeta) {
	m.suppressedCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordSearch(context.Context, OpMeta, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, string, bool)                 {}
func (noopMetrics) RecordSuppressed(context.Context, OpMeta)                   {}
