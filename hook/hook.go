// Package hook defines lifecycle hooks for strand queues.
//
// Extensions are notified of queue lifecycle events (a task enqueued,
// started, completed, failed, a queue disposed) and can react to them:
// recording metrics, writing audit logs, feeding debug overlays. Each
// hook is a separate interface so extensions opt in only to the events
// they care about.
//
// # Implementing an Extension
//
//	type auditLog struct{}
//
//	func (auditLog) Name() string { return "audit-log" }
//
//	func (auditLog) OnTaskFailed(ctx context.Context, t hook.TaskInfo, err error) error {
//	    log.Printf("task failed on %s: %v", t.Queue, err)
//	    return nil
//	}
//
// The [Registry] fans each event out to every registered extension that
// implements the corresponding hook interface. Hook errors are logged,
// never propagated: observers must not perturb the queue.
package hook

import (
	"context"
	"time"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// TaskInfo describes a task event's origin. Tasks are opaque, so the
// info identifies the queue, not the work.
type TaskInfo struct {
	// Queue is the diagnostic name of the queue.
	Queue string

	// Kind is the queue variant, as reported by Kind.String().
	Kind string

	// Seq is the task's submission sequence number on its queue,
	// starting at 1.
	Seq uint64
}

// TaskEnqueued is called after a task is accepted by Post.
type TaskEnqueued interface {
	OnTaskEnqueued(ctx context.Context, t TaskInfo) error
}

// TaskStarted is called when a task begins executing on its queue.
type TaskStarted interface {
	OnTaskStarted(ctx context.Context, t TaskInfo) error
}

// TaskCompleted is called when a task finishes without error.
type TaskCompleted interface {
	OnTaskCompleted(ctx context.Context, t TaskInfo, elapsed time.Duration) error
}

// TaskFailed is called when a task returns an error or panics. The
// same error is also forwarded to the queue's ErrorHandler; this hook
// exists for observers, the handler for the owner.
type TaskFailed interface {
	OnTaskFailed(ctx context.Context, t TaskInfo, err error) error
}

// QueueDisposed is called once, after the first disposal of a queue has
// finished its teardown.
type QueueDisposed interface {
	OnQueueDisposed(ctx context.Context, queue string) error
}
