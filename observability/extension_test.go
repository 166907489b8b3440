package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xraph/strand/hook"
	"github.com/xraph/strand/observability"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name != name {
				continue
			}
			sum, ok := sm.Metrics[i].Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64] data type", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func info() hook.TaskInfo {
	return hook.TaskInfo{Queue: "bridge", Kind: "pooled-exclusive", Seq: 1}
}

func TestMetricsExtension_CountsLifecycle(t *testing.T) {
	reader, mp := setupTestMeter()
	ext := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := ext.OnTaskEnqueued(ctx, info()); err != nil {
			t.Fatalf("OnTaskEnqueued: %v", err)
		}
	}
	if err := ext.OnTaskCompleted(ctx, info(), 5*time.Millisecond); err != nil {
		t.Fatalf("OnTaskCompleted: %v", err)
	}
	if err := ext.OnTaskCompleted(ctx, info(), 5*time.Millisecond); err != nil {
		t.Fatalf("OnTaskCompleted: %v", err)
	}
	if err := ext.OnTaskFailed(ctx, info(), errors.New("x")); err != nil {
		t.Fatalf("OnTaskFailed: %v", err)
	}
	if err := ext.OnQueueDisposed(ctx, "bridge"); err != nil {
		t.Fatalf("OnQueueDisposed: %v", err)
	}

	if got := counterValue(t, reader, "strand.task.enqueued"); got != 3 {
		t.Errorf("enqueued = %d, want 3", got)
	}
	if got := counterValue(t, reader, "strand.task.completed"); got != 2 {
		t.Errorf("completed = %d, want 2", got)
	}
	if got := counterValue(t, reader, "strand.task.failed"); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if got := counterValue(t, reader, "strand.queue.disposed"); got != 1 {
		t.Errorf("disposed = %d, want 1", got)
	}
}

func TestMetricsExtension_TaskAttributes(t *testing.T) {
	reader, mp := setupTestMeter()
	ext := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	if err := ext.OnTaskEnqueued(context.Background(), info()); err != nil {
		t.Fatalf("OnTaskEnqueued: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name != "strand.task.enqueued" {
				continue
			}
			sum := sm.Metrics[i].Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) == 0 {
				t.Fatal("no data points")
			}
			attrs := sum.DataPoints[0].Attributes
			if v, ok := attrs.Value(attribute.Key("queue")); !ok || v.AsString() != "bridge" {
				t.Errorf("queue attribute = %v, want bridge", v)
			}
			if v, ok := attrs.Value(attribute.Key("kind")); !ok || v.AsString() != "pooled-exclusive" {
				t.Errorf("kind attribute = %v, want pooled-exclusive", v)
			}
			return
		}
	}
	t.Fatal("strand.task.enqueued metric not found")
}
