package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordStageObservesHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStage(ctx, StageUpload, 1500*time.Millisecond)
	m.RecordStage(ctx, StageUpload, 500*time.Millisecond)

	found := findMetric(collect(t, reader), "auralex.pipeline.stage.duration")
	if found == nil {
		t.Fatal("stage duration metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("want 1 data point, got %d", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 2 {
		t.Errorf("count = %d, want 2", dp.Count)
	}
	if v, _ := dp.Attributes.Value(attribute.Key("stage")); v.AsString() != StageUpload {
		t.Errorf("stage attribute = %q, want %q", v.AsString(), StageUpload)
	}
}

func TestRecordErrorCountsByKind(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordError(ctx, "auth_failure")
	m.RecordError(ctx, "auth_failure")
	m.RecordError(ctx, "network_failure")

	found := findMetric(collect(t, reader), "auralex.pipeline.errors")
	if found == nil {
		t.Fatal("errors metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("kind"))
		counts[v.AsString()] = dp.Value
	}
	if counts["auth_failure"] != 2 || counts["network_failure"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestRecordRunAndPoll(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRun(ctx, "ok", "embedded", time.Second)
	m.RecordPoll(ctx)
	m.RecordPoll(ctx)

	rm := collect(t, reader)
	if findMetric(rm, "auralex.pipeline.runs") == nil {
		t.Error("runs metric not found")
	}
	if findMetric(rm, "auralex.pipeline.duration") == nil {
		t.Error("duration metric not found")
	}
	polls := findMetric(rm, "auralex.asset.polls")
	if polls == nil {
		t.Fatal("polls metric not found")
	}
	sum := polls.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
		t.Errorf("unexpected poll data %+v", sum.DataPoints)
	}
}

func TestDefaultMetricsIsSingleton(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Fatal("DefaultMetrics returned different instances")
	}
}
