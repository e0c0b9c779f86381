// Package observe records OpenTelemetry metrics for the study-material
// pipeline. [DefaultMetrics] uses the global meter provider, which is a no-op
// until the host application installs one; tests should build their own
// instance with [NewMetrics] and an SDK ManualReader.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Nephrolytics-ai/auralex"

// Stage names used with [Metrics.RecordStage].
const (
	StageEncode   = "encode"
	StageUpload   = "upload"
	StageGenerate = "generate"
	StageValidate = "validate"
)

type Metrics struct {
	// StageDuration tracks per-stage latency. Attribute: stage.
	StageDuration metric.Float64Histogram

	// PipelineDuration tracks end-to-end latency of one invocation.
	PipelineDuration metric.Float64Histogram

	// PipelineRuns counts invocations. Attributes: status, transport.
	PipelineRuns metric.Int64Counter

	// PipelineErrors counts classified failures. Attribute: kind.
	PipelineErrors metric.Int64Counter

	// AssetPolls counts asset state re-fetches while processing.
	AssetPolls metric.Int64Counter
}

// Upload and generation of long recordings can take minutes.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("auralex.pipeline.stage.duration",
		metric.WithDescription("Latency of a single pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("auralex.pipeline.duration",
		metric.WithDescription("End-to-end latency of a pipeline invocation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineRuns, err = m.Int64Counter("auralex.pipeline.runs",
		metric.WithDescription("Pipeline invocations by status and transport."),
	); err != nil {
		return nil, err
	}
	if met.PipelineErrors, err = m.Int64Counter("auralex.pipeline.errors",
		metric.WithDescription("Classified pipeline failures by kind."),
	); err != nil {
		return nil, err
	}
	if met.AssetPolls, err = m.Int64Counter("auralex.asset.polls",
		metric.WithDescription("Remote asset state re-fetches while processing."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built from
// [otel.GetMeterProvider]. Panics if instrument creation fails.
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

func (m *Metrics) RecordStage(ctx context.Context, stage string, elapsed time.Duration) {
	m.StageDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *Metrics) RecordRun(ctx context.Context, status, transport string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("transport", transport),
	)
	m.PipelineRuns.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) RecordError(ctx context.Context, kind string) {
	m.PipelineErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordPoll(ctx context.Context) {
	m.AssetPolls.Add(ctx, 1)
}
