package strand

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/strand/fifo"
	"github.com/xraph/strand/pool"
)

// ownedPoolStopTimeout bounds how long disposal of a queue-owned pool
// waits for the workers to drain.
const ownedPoolStopTimeout = 30 * time.Second

// pooledQueue serializes tasks onto a shared worker pool. Two
// independent mechanisms enforce the one-at-a-time guarantee:
//
//  1. a concurrency-1 serializer: at most one drain function from
//     this queue is ever in flight on the pool; it runs one task and
//     re-posts itself while work remains (yielding the worker to other
//     pool users between tasks);
//  2. a mutual-exclusion gate held around every task execution, so
//     exclusivity survives even if the serializer were ever violated.
type pooledQueue struct {
	queueBase

	pool     *pool.Pool
	ownsPool bool

	// pending holds submitted tasks awaiting their turn on the pool.
	pending *fifo.Queue[*queuedTask]

	// mu guards inflight: the serializer's "a drain is scheduled"
	// flag. The Len check in afterDrain and the flag update must be
	// atomic together or a racing Post could be lost.
	mu       sync.Mutex
	inflight bool

	// gate is the exclusion gate. Dispose acquires it before flipping
	// the disposal flag, which is why disposing from a task running on
	// this queue deadlocks (documented contract, see package doc).
	gate sync.Mutex
}

var _ Queue = (*pooledQueue)(nil)

func newPooledQueue(spec Spec, handler ErrorHandler, s *settings, p *pool.Pool, ownsPool bool) *pooledQueue {
	q := &pooledQueue{
		pool:     p,
		ownsPool: ownsPool,
		pending:  fifo.New[*queuedTask](),
	}
	q.init(spec, handler, s)
	return q
}

func (q *pooledQueue) Post(task Task) error {
	info, err := q.admit(task)
	if err != nil {
		return err
	}

	// Push before scheduling: afterDrain's Len check relies on the
	// task being visible by the time the serializer decides to idle.
	q.pending.Push(&queuedTask{task: task, info: info})

	if err := q.schedule(); err != nil {
		return err
	}
	q.enqueued(info)
	return nil
}

// schedule puts one drain on the pool unless one is already in flight.
func (q *pooledQueue) schedule() error {
	q.mu.Lock()
	if q.inflight {
		q.mu.Unlock()
		return nil
	}
	q.inflight = true
	q.mu.Unlock()

	if err := q.pool.Submit(q.drain); err != nil {
		q.mu.Lock()
		q.inflight = false
		q.mu.Unlock()
		return err
	}
	return nil
}

// drain runs on a pool worker: execute one task under the gate, then
// either re-post (more work pending) or go idle.
func (q *pooledQueue) drain(ctx context.Context) {
	if t, ok := q.pending.TryPop(); ok {
		q.runGated(ctx, t)
	}
	q.afterDrain()
}

// runGated is the execution wrapper: acquire the gate, re-check the
// disposal flag inside it, run the task. The deferred unlock releases
// the gate on every exit path, a panicking task included.
func (q *pooledQueue) runGated(ctx context.Context, t *queuedTask) {
	q.gate.Lock()
	defer q.gate.Unlock()

	if q.disposed.Load() {
		// Disposal won the gate first; pending work is skipped.
		return
	}
	q.run(withQueue(ctx, q), t)
}

// afterDrain re-posts the serializer while work remains, or clears the
// inflight flag. Both the emptiness check and the flag update happen
// under mu so a concurrent Post either sees inflight and stops, or
// sees the flag cleared and schedules.
func (q *pooledQueue) afterDrain() {
	q.mu.Lock()
	if q.pending.Len() == 0 {
		q.inflight = false
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	if err := q.pool.Submit(q.drain); err != nil {
		// Pool stopped underneath us; remaining tasks can no longer
		// run.
		q.mu.Lock()
		q.inflight = false
		q.mu.Unlock()
		q.logger.Warn("dropping pending tasks: pool stopped",
			slog.Int("pending", q.pending.Len()),
		)
	}
}

func (q *pooledQueue) IsOnQueue(ctx context.Context) (bool, error) {
	if q.disposed.Load() {
		return false, ErrDisposed
	}
	return FromContext(ctx) == Queue(q), nil
}

// Dispose acquires the gate, waiting out any task mid-execution,
// then flips the disposal flag. A queue-owned pool is stopped; a
// shared pool is left to its owner. Calling Dispose from a task on
// this queue deadlocks by design: the gate is not reentrant.
func (q *pooledQueue) Dispose() error {
	q.gate.Lock()
	first := q.disposed.CompareAndSwap(false, true)
	q.gate.Unlock()

	if !first {
		return nil
	}

	if q.ownsPool {
		ctx, cancel := context.WithTimeout(context.Background(), ownedPoolStopTimeout)
		defer cancel()
		if err := q.pool.Stop(ctx); err != nil {
			q.logger.Warn("owned pool stop timed out", slog.String("error", err.Error()))
		}
	}

	q.disposedEvent()
	return nil
}
