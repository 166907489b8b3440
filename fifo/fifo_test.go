package fifo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) failed on open queue", i)
		}
	}

	for i := 0; i < 100; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue unexpectedly drained", i)
		}
		if v != i {
			t.Fatalf("Pop %d: got %d, want %d", i, v, i)
		}
	}
}

func TestQueue_TryPop(t *testing.T) {
	q := New[string]()

	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop on empty queue should report false")
	}

	q.Push("a")
	v, ok := q.TryPop()
	if !ok || v != "a" {
		t.Fatalf("TryPop = (%q, %v), want (a, true)", v, ok)
	}
	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop after drain should report false")
	}
}

// ---------------------------------------------------------------------------
// Blocking behavior
// ---------------------------------------------------------------------------

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := New[int]()

	got := make(chan int, 1)
	go func() {
		v, _ := q.Pop()
		got <- v
	}()

	// Give the consumer time to block.
	time.Sleep(20 * time.Millisecond)
	q.Push(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake after Push")
	}
}

func TestQueue_CloseWakesBlockedConsumers(t *testing.T) {
	q := New[int]()

	done := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, ok := q.Pop()
			done <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()

	for i := 0; i < 2; i++ {
		select {
		case ok := <-done:
			if ok {
				t.Fatal("Pop on closed empty queue should report false")
			}
		case <-time.After(time.Second):
			t.Fatal("Close did not wake blocked consumer")
		}
	}
}

// ---------------------------------------------------------------------------
// Close semantics
// ---------------------------------------------------------------------------

func TestQueue_CloseDrainsRemainingItems(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Close()

	for want := 1; want <= 2; want++ {
		v, ok := q.Pop()
		if !ok || v != want {
			t.Fatalf("Pop after Close = (%d, %v), want (%d, true)", v, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on drained closed queue should report false")
	}
}

func TestQueue_PushAfterClose(t *testing.T) {
	q := New[int]()
	q.Close()

	if q.Push(1) {
		t.Fatal("Push after Close should report false")
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d after rejected Push, want 0", q.Len())
	}
	if !q.Closed() {
		t.Fatal("Closed should report true")
	}

	// Idempotent.
	q.Close()
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestQueue_ConcurrentProducersSingleConsumer(t *testing.T) {
	q := New[int]()

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	var consumed atomic.Int64
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			_, ok := q.Pop()
			if !ok {
				return
			}
			consumed.Add(1)
		}
	}()

	wg.Wait()
	q.Close()
	<-consumerDone

	if got := consumed.Load(); got != producers*perProducer {
		t.Fatalf("consumed %d items, want %d", got, producers*perProducer)
	}
}
