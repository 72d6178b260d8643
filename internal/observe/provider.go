package observe

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Provider is an in-process meter provider whose readings are dumped to the
// log on shutdown. The CLI has no scrape endpoint to export to.
type Provider struct {
	mp     *sdkmetric.MeterProvider
	reader *sdkmetric.ManualReader
}

// InitProvider installs a meter provider as the global one.
func InitProvider() *Provider {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	return &Provider{mp: mp, reader: reader}
}

// Shutdown logs every recorded metric at debug level and stops the provider.
func (p *Provider) Shutdown(ctx context.Context, logger *slog.Logger) error {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("failed to collect metrics: %w", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			logMetric(logger, m)
		}
	}
	return p.mp.Shutdown(ctx)
}

func logMetric(logger *slog.Logger, m metricdata.Metrics) {
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			logger.Debug("metric", "name", m.Name, "value", dp.Value, "attributes", dp.Attributes.Encoded(attribute.DefaultEncoder()))
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			logger.Debug("metric", "name", m.Name, "count", dp.Count, "sum", dp.Sum)
		}
	}
}
