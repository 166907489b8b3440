// Package fifo provides an unbounded, blocking FIFO queue safe for
// concurrent use. Producers never block; consumers block until an item
// is available or the queue is closed and drained.
package fifo

import "sync"

// Queue is an unbounded multi-producer, multi-consumer FIFO.
// The zero value is not usable; create one with New.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail of the queue. It never blocks beyond the
// cost of the internal lock. Push returns false if the queue has been
// closed; the item is not enqueued in that case.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	q.cond.Signal()
	return true
}

// Pop removes and returns the item at the head of the queue, blocking
// while the queue is empty. After Close, Pop keeps returning the items
// already enqueued; once drained it returns the zero value and false.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && len(q.items) == 0 {
		q.cond.Wait()
	}

	var zero T
	if len(q.items) == 0 {
		// Closed and drained.
		return zero, false
	}

	v := q.items[0]
	q.items[0] = zero // release the reference
	q.items = q.items[1:]
	return v, true
}

// TryPop is the non-blocking form of Pop: it returns the head item if
// one is available and the zero value and false otherwise, regardless
// of whether the queue is closed.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Close marks the queue closed and wakes all blocked consumers.
// Items already enqueued remain available to Pop. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of items currently enqueued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
