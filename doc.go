// Package strand provides serialized task-execution queues for Go.
// A queue accepts tasks from any goroutine and guarantees they run
// one at a time, in submission order, on a designated execution
// context, while letting callers ask whether they are currently
// running on that context.
//
// Strand is the synchronization backbone for bridge-style runtimes
// that shuttle calls between a UI loop, dedicated background work, and
// a shared worker pool. The work itself is opaque: strand decides when
// and where a task runs, never what it does.
//
// # Quick Start
//
//	q, err := strand.New(
//	    strand.Spec{Kind: strand.KindDedicatedThread, Name: "native-modules"},
//	    func(queue string, err error) { log.Printf("%s: %v", queue, err) },
//	)
//	if err != nil {
//	    // ...
//	}
//	defer q.Dispose()
//
//	q.Post(func(ctx context.Context) error {
//	    on, _ := q.IsOnQueue(ctx)
//	    // on == true: we are inside the queue's execution context
//	    return nil
//	})
//
// # Variants
//
// Three backing mechanisms provide identical serialization semantics:
//
//   - [KindDispatcherBound] binds to an externally owned
//     [dispatcher.Loop] (a UI-affine event loop) and delivers tasks to
//     it through an ordered stream.
//   - [KindDedicatedThread] owns one exclusive goroutine pumping a
//     blocking FIFO; disposal drains queued tasks and joins the pump.
//   - [KindPooledExclusive] rides a shared [pool.Pool] behind a
//     concurrency-1 serializer plus a mutual-exclusion gate.
//
// # Failure Isolation
//
// A task that returns an error or panics never terminates its queue:
// the error is forwarded to the queue's ErrorHandler and the queue
// keeps processing. This is the core failure-isolation contract: one
// bad task must not starve the execution context.
//
// # Disposal
//
// Dispose is idempotent; the first call runs teardown, later calls are
// no-ops. CAUTION: disposing a pooled exclusive queue from a task
// running on that same queue deadlocks, because disposal acquires the
// gate the task is holding. Never dispose a queue from its own tasks.
package strand
