// Package observability provides a queue extension that records
// lifecycle metrics through OpenTelemetry.
//
// The Metrics middleware times individual executions; this extension
// instead counts lifecycle events, including the ones middleware never
// sees (enqueues and disposals). The two are complementary and are
// usually wired together.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/strand/hook"
)

// meterName is the instrumentation scope name for strand metrics.
const meterName = "github.com/xraph/strand"

var (
	_ hook.Extension     = (*MetricsExtension)(nil)
	_ hook.TaskEnqueued  = (*MetricsExtension)(nil)
	_ hook.TaskCompleted = (*MetricsExtension)(nil)
	_ hook.TaskFailed    = (*MetricsExtension)(nil)
	_ hook.QueueDisposed = (*MetricsExtension)(nil)
)

// MetricsExtension counts queue lifecycle events. Every counter carries
// queue and kind attributes so one registry can serve many queues.
//
// Instruments:
//   - strand.task.enqueued (Int64Counter): tasks accepted by Post
//   - strand.task.completed (Int64Counter): tasks finished without error
//   - strand.task.failed (Int64Counter): tasks that errored or panicked
//   - strand.queue.disposed (Int64Counter): queue disposals
type MetricsExtension struct {
	enqueued  metric.Int64Counter
	completed metric.Int64Counter
	failed    metric.Int64Counter
	disposed  metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. Without a configured provider the instruments are
// noops and the extension costs nothing.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific
// MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	enqueued, _ := meter.Int64Counter(
		"strand.task.enqueued",
		metric.WithDescription("Tasks accepted for execution"),
		metric.WithUnit("{task}"),
	)
	completed, _ := meter.Int64Counter(
		"strand.task.completed",
		metric.WithDescription("Tasks finished without error"),
		metric.WithUnit("{task}"),
	)
	failed, _ := meter.Int64Counter(
		"strand.task.failed",
		metric.WithDescription("Tasks that returned an error or panicked"),
		metric.WithUnit("{task}"),
	)
	disposed, _ := meter.Int64Counter(
		"strand.queue.disposed",
		metric.WithDescription("Queue disposals"),
		metric.WithUnit("{queue}"),
	)
	return &MetricsExtension{
		enqueued:  enqueued,
		completed: completed,
		failed:    failed,
		disposed:  disposed,
	}
}

func (m *MetricsExtension) Name() string { return "observability-metrics" }

func (m *MetricsExtension) OnTaskEnqueued(ctx context.Context, t hook.TaskInfo) error {
	m.enqueued.Add(ctx, 1, taskAttrs(t))
	return nil
}

func (m *MetricsExtension) OnTaskCompleted(ctx context.Context, t hook.TaskInfo, _ time.Duration) error {
	m.completed.Add(ctx, 1, taskAttrs(t))
	return nil
}

func (m *MetricsExtension) OnTaskFailed(ctx context.Context, t hook.TaskInfo, _ error) error {
	m.failed.Add(ctx, 1, taskAttrs(t))
	return nil
}

func (m *MetricsExtension) OnQueueDisposed(ctx context.Context, queue string) error {
	m.disposed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", queue),
	))
	return nil
}

func taskAttrs(t hook.TaskInfo) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("queue", t.Queue),
		attribute.String("kind", t.Kind),
	)
}
