// Package audit bridges queue lifecycle events to an audit trail
// backend. Register the extension to get a structured record of every
// task a queue accepts, runs, completes, or fails, plus queue
// disposals.
//
// The backend is injected as a [Recorder]; the package carries no
// storage dependency of its own.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/strand/hook"
)

var (
	_ hook.Extension     = (*Extension)(nil)
	_ hook.TaskEnqueued  = (*Extension)(nil)
	_ hook.TaskStarted   = (*Extension)(nil)
	_ hook.TaskCompleted = (*Extension)(nil)
	_ hook.TaskFailed    = (*Extension)(nil)
	_ hook.QueueDisposed = (*Extension)(nil)
)

// Recorder is the interface audit backends implement. Callers inject
// their concrete trail (a database writer, an append-only log) at
// wiring time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *Event) error
}

// RecorderFunc adapts a plain function to a Recorder.
type RecorderFunc func(ctx context.Context, event *Event) error

func (f RecorderFunc) Record(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Event is one audit trail entry.
type Event struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// Audit event actions. Each constant corresponds to one lifecycle hook
// and becomes the Action field of the emitted event.
const (
	ActionTaskEnqueued  = "task.enqueued"
	ActionTaskStarted   = "task.started"
	ActionTaskCompleted = "task.completed"
	ActionTaskFailed    = "task.failed"
	ActionQueueDisposed = "queue.disposed"
)

// Resource types used as the Resource field.
const (
	ResourceTask  = "task"
	ResourceQueue = "queue"
)

// Severity levels.
const (
	SeverityInfo     = "info"
	SeverityCritical = "critical"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionTaskEnqueued,
		ActionTaskStarted,
		ActionTaskCompleted,
		ActionTaskFailed,
		ActionQueueDisposed,
	}
}

// Option configures an Extension.
type Option func(*Extension)

// WithActions restricts the extension to emit only the listed actions.
// By default all actions are enabled.
func WithActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.enabled[a] = true
		}
	}
}

// WithLogger sets the logger used to report recorder failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}

// Extension emits one audit event per lifecycle hook through the
// configured Recorder. Recorder failures are logged and never surface
// to the queue.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension recording through r.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) Name() string { return "audit" }

func (e *Extension) OnTaskEnqueued(ctx context.Context, t hook.TaskInfo) error {
	return e.record(ctx, ActionTaskEnqueued, SeverityInfo, OutcomeSuccess,
		ResourceTask, taskID(t), nil,
		"queue", t.Queue,
		"kind", t.Kind,
	)
}

func (e *Extension) OnTaskStarted(ctx context.Context, t hook.TaskInfo) error {
	return e.record(ctx, ActionTaskStarted, SeverityInfo, OutcomeSuccess,
		ResourceTask, taskID(t), nil,
		"queue", t.Queue,
		"kind", t.Kind,
	)
}

func (e *Extension) OnTaskCompleted(ctx context.Context, t hook.TaskInfo, elapsed time.Duration) error {
	return e.record(ctx, ActionTaskCompleted, SeverityInfo, OutcomeSuccess,
		ResourceTask, taskID(t), nil,
		"queue", t.Queue,
		"kind", t.Kind,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

func (e *Extension) OnTaskFailed(ctx context.Context, t hook.TaskInfo, taskErr error) error {
	return e.record(ctx, ActionTaskFailed, SeverityCritical, OutcomeFailure,
		ResourceTask, taskID(t), taskErr,
		"queue", t.Queue,
		"kind", t.Kind,
	)
}

func (e *Extension) OnQueueDisposed(ctx context.Context, queue string) error {
	return e.record(ctx, ActionQueueDisposed, SeverityInfo, OutcomeSuccess,
		ResourceQueue, queue, nil,
	)
}

// taskID gives a stable per-task identifier. Tasks are opaque
// functions, so the queue name plus submission sequence is the
// identity.
func taskID(t hook.TaskInfo) string {
	return fmt.Sprintf("%s/%d", t.Queue, t.Seq)
}

// record builds and sends one event if the action is enabled. kvPairs
// is a flat list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &Event{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit: failed to record event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
