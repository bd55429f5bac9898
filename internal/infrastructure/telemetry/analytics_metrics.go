package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when an instrument set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// AnalyticsMetrics records aggregation facet latency and report cache effectiveness
type AnalyticsMetrics struct {
	facetDuration *Histogram
	facetErrors   *Counter
	cacheLookups  *Counter
}

// NewAnalyticsMetrics creates the analytics instruments on meter
func NewAnalyticsMetrics(meter metric.Meter) (*AnalyticsMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "analytics_facet_duration_seconds",
		Description: "Duration of a single aggregation facet",
		Unit:        "s",
		Boundaries:  FacetDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	facetErrors, err := NewCounter(meter, "analytics_facet_errors_total", "Failed aggregation facets", "{facets}")
	if err != nil {
		return nil, err
	}
	lookups, err := NewCounter(meter, "analytics_cache_lookups_total", "Report cache lookups by outcome", "{lookups}")
	if err != nil {
		return nil, err
	}

	return &AnalyticsMetrics{
		facetDuration: duration,
		facetErrors:   facetErrors,
		cacheLookups:  lookups,
	}, nil
}

// RecordFacet records one facet execution
func (m *AnalyticsMetrics) RecordFacet(ctx context.Context, facet string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.facetErrors.Inc(ctx, AttrFacetName.String(facet))
	}
	m.facetDuration.RecordDuration(ctx, elapsed, AttrFacetName.String(facet), AttrOutcome.String(outcome))
}

// RecordCacheLookup counts a cache hit or miss for report
func (m *AnalyticsMetrics) RecordCacheLookup(ctx context.Context, report string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Inc(ctx, AttrReport.String(report), AttrOutcome.String(outcome))
}
