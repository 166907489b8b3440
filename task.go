package strand

import "context"

// Task is an opaque unit of work submitted for serialized execution.
// The queue never inspects what a task does; it only guarantees when
// and on which context it runs. A returned error is forwarded to the
// queue's ErrorHandler, never to the submitter. The ctx identifies the
// queue's execution context (see FromContext and Queue.IsOnQueue).
type Task func(ctx context.Context) error

// ErrorHandler receives errors raised by tasks during execution,
// returned errors and recovered panics alike. It is called from the
// queue's execution context, after the failing task has finished and
// before the next task starts. The handler decides whether to log,
// escalate, or crash; the queue itself always keeps running.
type ErrorHandler func(queue string, err error)

// queueKey is the context key under which the executing queue is
// stored. Every variant stamps its identity into the context it hands
// to tasks.
type queueKey struct{}

func withQueue(ctx context.Context, q Queue) context.Context {
	return context.WithValue(ctx, queueKey{}, q)
}

// FromContext returns the Queue the calling code is executing on, or
// nil if the context did not originate from a strand task.
func FromContext(ctx context.Context) Queue {
	q, _ := ctx.Value(queueKey{}).(Queue)
	return q
}
