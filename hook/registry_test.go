package hook_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/strand/hook"
)

// countingExt opts in to every hook and counts deliveries.
type countingExt struct {
	name      string
	enqueued  atomic.Int64
	started   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	disposed  atomic.Int64
}

func (e *countingExt) Name() string { return e.name }

func (e *countingExt) OnTaskEnqueued(context.Context, hook.TaskInfo) error {
	e.enqueued.Add(1)
	return nil
}

func (e *countingExt) OnTaskStarted(context.Context, hook.TaskInfo) error {
	e.started.Add(1)
	return nil
}

func (e *countingExt) OnTaskCompleted(context.Context, hook.TaskInfo, time.Duration) error {
	e.completed.Add(1)
	return nil
}

func (e *countingExt) OnTaskFailed(context.Context, hook.TaskInfo, error) error {
	e.failed.Add(1)
	return nil
}

func (e *countingExt) OnQueueDisposed(context.Context, string) error {
	e.disposed.Add(1)
	return nil
}

// failedOnlyExt implements a single hook.
type failedOnlyExt struct {
	lastErr error
}

func (e *failedOnlyExt) Name() string { return "failed-only" }

func (e *failedOnlyExt) OnTaskFailed(_ context.Context, _ hook.TaskInfo, err error) error {
	e.lastErr = err
	return nil
}

// faultyExt returns an error from its hook; the registry must log and
// carry on.
type faultyExt struct{}

func (faultyExt) Name() string { return "faulty" }

func (faultyExt) OnTaskStarted(context.Context, hook.TaskInfo) error {
	return errors.New("hook blew up")
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

func TestRegistry_FanOut(t *testing.T) {
	r := hook.NewRegistry(slog.Default())
	a := &countingExt{name: "a"}
	b := &countingExt{name: "b"}
	r.Register(a)
	r.Register(b)

	info := hook.TaskInfo{Queue: "q", Kind: "dedicated-thread", Seq: 1}
	ctx := context.Background()

	r.EmitTaskEnqueued(ctx, info)
	r.EmitTaskStarted(ctx, info)
	r.EmitTaskCompleted(ctx, info, time.Millisecond)
	r.EmitTaskFailed(ctx, info, errors.New("task error"))
	r.EmitQueueDisposed(ctx, "q")

	for _, e := range []*countingExt{a, b} {
		if e.enqueued.Load() != 1 || e.started.Load() != 1 || e.completed.Load() != 1 ||
			e.failed.Load() != 1 || e.disposed.Load() != 1 {
			t.Fatalf("extension %s missed events: %+v", e.name, e)
		}
	}
}

func TestRegistry_OptInOnly(t *testing.T) {
	r := hook.NewRegistry(slog.Default())
	e := &failedOnlyExt{}
	r.Register(e)

	info := hook.TaskInfo{Queue: "q"}
	ctx := context.Background()

	// These must not panic even though the extension ignores them.
	r.EmitTaskEnqueued(ctx, info)
	r.EmitTaskStarted(ctx, info)
	r.EmitTaskCompleted(ctx, info, 0)
	r.EmitQueueDisposed(ctx, "q")

	taskErr := errors.New("task error")
	r.EmitTaskFailed(ctx, info, taskErr)
	if e.lastErr != taskErr {
		t.Fatalf("OnTaskFailed got %v, want %v", e.lastErr, taskErr)
	}
}

func TestRegistry_HookErrorDoesNotStopFanOut(t *testing.T) {
	r := hook.NewRegistry(slog.Default())
	counting := &countingExt{name: "counting"}
	r.Register(faultyExt{})
	r.Register(counting)

	r.EmitTaskStarted(context.Background(), hook.TaskInfo{Queue: "q"})

	if counting.started.Load() != 1 {
		t.Fatal("extension after the faulty one was not notified")
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := hook.NewRegistry(nil)
	r.Register(&countingExt{name: "a"})
	r.Register(faultyExt{})

	if got := len(r.Extensions()); got != 2 {
		t.Fatalf("Extensions() has %d entries, want 2", got)
	}
}
