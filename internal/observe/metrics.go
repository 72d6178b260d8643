// Package observe holds the OpenTelemetry metric instruments recorded while
// summarizing. A package-level default ([DefaultMetrics]) uses the global
// meter provider; tests should use [NewMetrics] with their own provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dtnitsch/llm-web-summarizer"

// Failure kinds, used as the "kind" attribute of SummaryFailures.
const (
	KindExtraction = "extraction"
	KindRequest    = "request"
	KindStream     = "stream"
	KindConfig     = "config"
)

// Metrics holds every instrument. All fields are safe for concurrent use.
type Metrics struct {
	// FramesDecoded counts frames that parsed as JSON.
	FramesDecoded metric.Int64Counter

	// FramesDropped counts brace-balanced frames that were not valid JSON.
	FramesDropped metric.Int64Counter

	// Summaries counts completed summaries. Use with attribute:
	//   attribute.String("type", "webpage"|"video")
	Summaries metric.Int64Counter

	// SummaryFailures counts failed summaries. Use with attribute:
	//   attribute.String("kind", KindExtraction|KindRequest|KindStream|KindConfig)
	SummaryFailures metric.Int64Counter

	// StreamDuration tracks time from request to end of stream.
	StreamDuration metric.Float64Histogram
}

// streamBuckets are in seconds; generation streams run for a few seconds up
// to about a minute.
var streamBuckets = []float64{
	0.5, 1, 2, 5, 10, 20, 30, 60, 120,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesDecoded, err = m.Int64Counter("lws.stream.frames_decoded",
		metric.WithDescription("Stream frames decoded as JSON."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("lws.stream.frames_dropped",
		metric.WithDescription("Stream frames dropped because they were not valid JSON."),
	); err != nil {
		return nil, err
	}
	if met.Summaries, err = m.Int64Counter("lws.summaries",
		metric.WithDescription("Completed summaries by content type."),
	); err != nil {
		return nil, err
	}
	if met.SummaryFailures, err = m.Int64Counter("lws.summary.failures",
		metric.WithDescription("Failed summaries by failure kind."),
	); err != nil {
		return nil, err
	}
	if met.StreamDuration, err = m.Float64Histogram("lws.stream.duration",
		metric.WithDescription("Time from generation request to end of stream."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(streamBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics], created on first call
// from [otel.GetMeterProvider].
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordSummary counts a completed summary of the given content type.
func (m *Metrics) RecordSummary(ctx context.Context, contentType string) {
	m.Summaries.Add(ctx, 1, metric.WithAttributes(attribute.String("type", contentType)))
}

// RecordFailure counts a failed summary.
func (m *Metrics) RecordFailure(ctx context.Context, kind string) {
	m.SummaryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
