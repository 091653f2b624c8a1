package obs

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "traveltime-tiles/cache"

// CacheMetrics counts cache lookups by outcome and store writes by result.
// Without a registered MeterProvider the global meter is a no-op.
type CacheMetrics struct {
	lookups metric.Int64Counter
	writes  metric.Int64Counter
}

func NewCacheMetrics() *CacheMetrics {
	meter := otel.Meter(meterName)

	lookups, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Cache lookups by namespace and outcome"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("create cache.lookups counter")
	}

	writes, err := meter.Int64Counter(
		"cache.writes",
		metric.WithDescription("Cache writes by namespace and result"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("create cache.writes counter")
	}

	return &CacheMetrics{lookups: lookups, writes: writes}
}

func (m *CacheMetrics) RecordLookup(ctx context.Context, namespace, outcome string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func (m *CacheMetrics) RecordWrite(ctx context.Context, namespace string, err error) {
	if m == nil || m.writes == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("result", result),
	))
}
