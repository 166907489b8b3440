// Package pool provides a shared worker pool: a fixed set of goroutines
// draining a single unbounded submission queue. Strand's pooled
// exclusive queues ride on top of it, but the pool itself has no
// serialization guarantees; callers that need ordering bring their own.
package pool

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/xraph/strand/fifo"
)

// ErrStopped is returned by Submit after the pool has been stopped.
var ErrStopped = errors.New("pool: stopped")

// DefaultConcurrency is the number of workers a pool starts with when
// no WithConcurrency option is given.
const DefaultConcurrency = 4

// Fn is a unit of work submitted to the pool.
type Fn func(ctx context.Context)

// Pool manages a set of worker goroutines pulling submitted functions
// from an unbounded FIFO. Submission never blocks.
type Pool struct {
	tasks       *fifo.Queue[Fn]
	concurrency int
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// Option configures a Pool.
type Option func(*Pool)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the pool's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pool. Call Start before submitting work.
func New(opts ...Option) *Pool {
	p := &Pool{
		tasks:       fifo.New[Fn](),
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines. It returns immediately and is
// a no-op if the pool is already running.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true

	p.logger.Debug("worker pool starting", slog.Int("concurrency", p.concurrency))

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.workLoop()
	}
}

// Stop closes the submission queue and waits for the workers to finish.
// Work already submitted still runs; Submit fails with ErrStopped from
// here on. If ctx expires first, Stop returns ctx.Err() without waiting
// further (the workers keep draining in the background).
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	p.tasks.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debug("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool stop timed out")
		return ctx.Err()
	}
}

// Submit hands fn to the pool. It never blocks; the work runs later on
// one of the pool's workers.
func (p *Pool) Submit(fn Fn) error {
	if fn == nil {
		return errors.New("pool: nil function")
	}
	if !p.tasks.Push(fn) {
		return ErrStopped
	}
	return nil
}

// workLoop is run by each worker goroutine. It exits once the queue is
// closed and drained.
func (p *Pool) workLoop() {
	defer p.wg.Done()

	for {
		fn, ok := p.tasks.Pop()
		if !ok {
			return
		}
		p.invoke(fn)
	}
}

// invoke runs one function, containing panics so a failing submission
// cannot take a worker down. Submitters that care about failures wrap
// their work; this is the pool's own safety net.
func (p *Pool) invoke(fn Fn) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("submitted function panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn(context.Background())
}
