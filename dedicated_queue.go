package strand

import (
	"context"

	"github.com/xraph/strand/fifo"
)

// dedicatedQueue owns one exclusive background goroutine pumping a
// blocking FIFO. Everything submitted runs on that goroutine, in
// submission order.
type dedicatedQueue struct {
	queueBase

	// tasks is the blocking FIFO the pump drains. A nil entry is the
	// disposal sentinel; Post rejects nil tasks, so the sentinel is
	// unambiguous.
	tasks *fifo.Queue[*queuedTask]

	// done is closed when the pump goroutine exits.
	done chan struct{}
}

var _ Queue = (*dedicatedQueue)(nil)

// newDedicatedQueue starts the pump goroutine immediately.
func newDedicatedQueue(spec Spec, handler ErrorHandler, s *settings) *dedicatedQueue {
	q := &dedicatedQueue{
		tasks: fifo.New[*queuedTask](),
		done:  make(chan struct{}),
	}
	q.init(spec, handler, s)
	go q.pump()
	return q
}

// pump runs on the owned goroutine until the disposal sentinel is
// observed. Tasks enqueued ahead of the sentinel all execute; the
// sentinel alone ends the loop.
func (q *dedicatedQueue) pump() {
	defer close(q.done)

	// The identity marker lives for the goroutine's whole lifetime.
	ctx := withQueue(context.Background(), q)

	for {
		t, ok := q.tasks.Pop()
		if !ok || t == nil {
			return
		}
		q.run(ctx, t)
	}
}

func (q *dedicatedQueue) Post(task Task) error {
	info, err := q.admit(task)
	if err != nil {
		return err
	}
	// A Post racing with Dispose may land behind the sentinel; such a
	// task is accepted but never runs. Callers that need the stronger
	// guarantee must sequence their own submissions against disposal.
	q.tasks.Push(&queuedTask{task: task, info: info})
	q.enqueued(info)
	return nil
}

func (q *dedicatedQueue) IsOnQueue(ctx context.Context) (bool, error) {
	if q.disposed.Load() {
		return false, ErrDisposed
	}
	return FromContext(ctx) == Queue(q), nil
}

// Dispose flips the disposal flag, pushes the sentinel to unblock the
// pump, and blocks until the pump goroutine has fully exited. Every
// task enqueued before Dispose was called has run by the time Dispose
// returns.
func (q *dedicatedQueue) Dispose() error {
	if !q.disposed.CompareAndSwap(false, true) {
		return nil
	}
	q.tasks.Push(nil)
	<-q.done
	q.disposedEvent()
	return nil
}
