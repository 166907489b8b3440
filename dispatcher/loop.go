package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// ErrClosed is returned by Post after the loop has been closed.
var ErrClosed = errors.New("dispatcher: loop closed")

// DefaultBufferSize is the default capacity of the loop's event channel.
const DefaultBufferSize = 256

// Event is a unit of work delivered onto the loop. The context passed
// to the event carries the loop's identity (see FromContext).
type Event func(ctx context.Context)

// Loop is a single-consumer event loop: one goroutine, started at
// construction, drains a buffered channel and runs each event in
// delivery order. It models a UI-affine execution context (a native
// message loop): everything that must happen "on the UI thread" is
// posted here, and exactly one event runs at a time.
//
// The loop is typically owned by the application, created once at
// startup and closed once at shutdown. Multiple queues may post to the
// same loop.
type Loop struct {
	name    string
	events  chan Event
	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	logger  *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithBufferSize sets the event channel capacity.
func WithBufferSize(size int) Option {
	return func(l *Loop) {
		if size > 0 {
			l.events = make(chan Event, size)
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loop and immediately starts its pump goroutine.
func New(name string, opts ...Option) *Loop {
	l := &Loop{
		name:    name,
		events:  make(chan Event, DefaultBufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Name returns the loop's diagnostic name.
func (l *Loop) Name() string { return l.name }

// Post delivers an event to the loop. Events run in the order they were
// posted. Post blocks only while the event channel is full. It returns
// ErrClosed if the loop has been closed.
func (l *Loop) Post(ev Event) error {
	if ev == nil {
		return errors.New("dispatcher: nil event")
	}
	if l.closed.Load() {
		return ErrClosed
	}

	select {
	case l.events <- ev:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Close stops the loop. Events already in the channel are discarded;
// the event currently running finishes first. Close is idempotent and
// returns once the pump goroutine has exited.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.done)
	}
	<-l.stopped
}

// run is the pump goroutine. The context it hands to every event
// carries the loop's identity so code running on the loop can be
// recognized via FromContext.
func (l *Loop) run() {
	defer close(l.stopped)

	ctx := context.WithValue(context.Background(), loopKey{}, l)

	for {
		// Prefer shutdown over further events.
		select {
		case <-l.done:
			return
		default:
		}

		select {
		case <-l.done:
			return
		case ev := <-l.events:
			l.invoke(ctx, ev)
		}
	}
}

// invoke runs one event, containing panics so a failing event cannot
// kill the loop.
func (l *Loop) invoke(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event panicked on loop",
				slog.String("loop", l.name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	ev(ctx)
}

// loopKey is the context key under which the running loop is stored.
type loopKey struct{}

// FromContext returns the Loop the calling code is executing on, or nil
// if the context did not originate from a loop's pump goroutine.
func FromContext(ctx context.Context) *Loop {
	l, _ := ctx.Value(loopKey{}).(*Loop)
	return l
}
