package strand

import (
	"context"
	"log/slog"

	"github.com/xraph/strand/dispatcher"
	"github.com/xraph/strand/fifo"
)

// dispatcherQueue serializes tasks onto a pre-existing, externally
// owned dispatcher.Loop. The queue owns an ordered event stream and a
// single forwarder goroutine (the subscription) that delivers each
// task to the loop; the loop's one-at-a-time pump provides the
// serialization.
type dispatcherQueue struct {
	queueBase

	loop *dispatcher.Loop

	// events is the ordered task stream; closed at disposal.
	events *fifo.Queue[*queuedTask]

	// unsubscribed is closed when the forwarder goroutine exits.
	unsubscribed chan struct{}
}

var _ Queue = (*dispatcherQueue)(nil)

// newDispatcherQueue subscribes the forwarder immediately.
func newDispatcherQueue(spec Spec, handler ErrorHandler, s *settings) *dispatcherQueue {
	q := &dispatcherQueue{
		loop:         s.loop,
		events:       fifo.New[*queuedTask](),
		unsubscribed: make(chan struct{}),
	}
	q.init(spec, handler, s)
	go q.forward()
	return q
}

// forward is the subscription: it drains the event stream in order and
// posts each task onto the loop. One forwarder plus the loop's ordered
// channel keeps delivery strictly FIFO. The loop is externally owned
// and may be closed underneath us; tasks that can no longer be
// delivered are dropped with a log line.
func (q *dispatcherQueue) forward() {
	defer close(q.unsubscribed)

	for {
		t, ok := q.events.Pop()
		if !ok {
			return
		}
		err := q.loop.Post(func(ctx context.Context) {
			q.run(withQueue(ctx, q), t)
		})
		if err != nil {
			q.logger.Warn("dropping task: dispatcher loop closed",
				slog.String("loop", q.loop.Name()),
				slog.Uint64("seq", t.info.Seq),
			)
		}
	}
}

func (q *dispatcherQueue) Post(task Task) error {
	info, err := q.admit(task)
	if err != nil {
		return err
	}
	if !q.events.Push(&queuedTask{task: task, info: info}) {
		// Disposal closed the stream between admit and Push.
		return ErrDisposed
	}
	q.enqueued(info)
	return nil
}

// IsOnQueue is true for any code running on the bound loop, matching
// native message-loop semantics: "on the UI thread" is a property of
// the loop, not of which queue posted the work.
func (q *dispatcherQueue) IsOnQueue(ctx context.Context) (bool, error) {
	if q.disposed.Load() {
		return false, ErrDisposed
	}
	return dispatcher.FromContext(ctx) == q.loop, nil
}

// Dispose closes the event stream and waits for the forwarder to
// finish delivering what was already enqueued. The loop itself is
// externally owned and is left running.
func (q *dispatcherQueue) Dispose() error {
	if !q.disposed.CompareAndSwap(false, true) {
		return nil
	}
	q.events.Close()
	<-q.unsubscribed
	q.disposedEvent()
	return nil
}
