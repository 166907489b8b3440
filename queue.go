package strand

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/strand/hook"
	"github.com/xraph/strand/middleware"
)

// Queue is a serialized task-execution context. At most one task from
// a queue executes at any instant, and tasks submitted from a single
// goroutine run in submission order (strict FIFO for the
// dispatcher-bound and dedicated-thread variants; see the package doc
// for the pooled variant's ordering contract).
//
// All implementations are created through New and are safe for
// concurrent use by any number of goroutines.
type Queue interface {
	// Name returns the queue's diagnostic name.
	Name() string

	// Kind returns the queue's backing mechanism.
	Kind() Kind

	// Post enqueues task for eventual serialized execution. It never
	// blocks the caller and never runs the task inline. It fails with
	// ErrNilTask for a nil task, ErrDisposed after disposal, and
	// ErrRateLimited when a configured rate limit rejects the
	// submission.
	Post(task Task) error

	// IsOnQueue reports whether the calling context is this queue's
	// serialized execution context, true exactly when invoked from
	// inside a task currently running on the queue. It fails with
	// ErrDisposed after disposal.
	IsOnQueue(ctx context.Context) (bool, error)

	// Dispose releases the queue's resources. The first call runs
	// teardown (per-variant: joining the pump goroutine, closing the
	// event stream, stopping an owned pool); every later call is a
	// no-op returning nil. See the package doc for the pooled
	// variant's self-dispose hazard.
	Dispose() error
}

// queuedTask pairs a task with the metadata captured at submission.
type queuedTask struct {
	task Task
	info hook.TaskInfo
}

// queueBase carries the state and behavior shared by all variants:
// the disposal flag, error-handler forwarding, hook emission, the
// middleware chain and the panic-containing execution wrapper.
// Variants embed it and add their routing mechanics.
type queueBase struct {
	name    string
	kind    Kind
	handler ErrorHandler
	logger  *slog.Logger
	hooks   *hook.Registry
	mw      middleware.Middleware // nil when no middleware configured
	limiter *rate.Limiter         // nil when no rate limit configured

	// disposed transitions false→true exactly once. CompareAndSwap in
	// Dispose decides which caller runs teardown.
	disposed atomic.Bool

	// seq numbers submissions, starting at 1.
	seq atomic.Uint64
}

// init fills the base in place. queueBase holds atomics and is always
// embedded, never copied.
func (b *queueBase) init(spec Spec, handler ErrorHandler, s *settings) {
	b.name = spec.Name
	b.kind = spec.Kind
	b.handler = handler
	b.logger = s.logger.With(slog.String("queue", spec.Name))
	b.hooks = s.hooks
	if len(s.mws) > 0 {
		b.mw = middleware.Chain(s.mws...)
	}
	if s.rateLimit > 0 {
		b.limiter = rate.NewLimiter(s.rateLimit, s.rateBurst)
	}
}

func (b *queueBase) Name() string { return b.name }

func (b *queueBase) Kind() Kind { return b.kind }

// admit validates a submission and captures its metadata. Called at
// the head of every variant's Post.
func (b *queueBase) admit(task Task) (hook.TaskInfo, error) {
	if task == nil {
		return hook.TaskInfo{}, ErrNilTask
	}
	if b.disposed.Load() {
		return hook.TaskInfo{}, ErrDisposed
	}
	if b.limiter != nil && !b.limiter.Allow() {
		return hook.TaskInfo{}, ErrRateLimited
	}
	return hook.TaskInfo{
		Queue: b.name,
		Kind:  b.kind.String(),
		Seq:   b.seq.Add(1),
	}, nil
}

// enqueued reports a successful submission to the hooks.
func (b *queueBase) enqueued(info hook.TaskInfo) {
	if b.hooks != nil {
		b.hooks.EmitTaskEnqueued(context.Background(), info)
	}
}

// disposedEvent reports completed teardown to the hooks.
func (b *queueBase) disposedEvent() {
	b.logger.Debug("queue disposed", slog.String("kind", b.kind.String()))
	if b.hooks != nil {
		b.hooks.EmitQueueDisposed(context.Background(), b.name)
	}
}

// run executes one task inside the queue's serialized context. Errors
// and panics are forwarded to the handler and the hooks; they never
// propagate to the caller, so a failing task cannot take the
// execution context down with it.
func (b *queueBase) run(ctx context.Context, t *queuedTask) {
	if b.hooks != nil {
		b.hooks.EmitTaskStarted(ctx, t.info)
	}

	start := time.Now()
	err := b.execute(ctx, t)
	elapsed := time.Since(start)

	if err != nil {
		b.handler(b.name, err)
		if b.hooks != nil {
			b.hooks.EmitTaskFailed(ctx, t.info, err)
		}
		return
	}

	if b.hooks != nil {
		b.hooks.EmitTaskCompleted(ctx, t.info, elapsed)
	}
}

// execute runs the task through the middleware chain with panic
// containment. The recover here is unconditional; middleware.Recover
// is optional sugar, this is the contract.
func (b *queueBase) execute(ctx context.Context, t *queuedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("task panicked",
				slog.Uint64("seq", t.info.Seq),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("strand: panic in task %d on queue %s: %v", t.info.Seq, b.name, r)
		}
	}()

	terminal := middleware.Handler(t.task)
	if b.mw != nil {
		return b.mw(ctx, t.info, terminal)
	}
	return terminal(ctx)
}
