package strand

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/xraph/strand/dispatcher"
	"github.com/xraph/strand/hook"
	"github.com/xraph/strand/middleware"
	"github.com/xraph/strand/pool"
)

// settings collects everything the factory needs beyond the Spec.
type settings struct {
	logger          *slog.Logger
	loop            *dispatcher.Loop
	pool            *pool.Pool
	poolConcurrency int
	hooks           *hook.Registry
	mws             []middleware.Middleware
	rateLimit       rate.Limit
	rateBurst       int
}

// Option configures queue creation.
type Option func(*settings) error

// WithLogger sets the logger queues report through. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithDispatcher binds a KindDispatcherBound queue to the given loop.
// Required for that kind, ignored by the others. The loop stays owned
// by the caller: disposing the queue never closes it.
func WithDispatcher(loop *dispatcher.Loop) Option {
	return func(s *settings) error {
		s.loop = loop
		return nil
	}
}

// WithPool makes a KindPooledExclusive queue ride the given shared
// pool instead of a private one. The pool stays owned by the caller
// and is not stopped when the queue is disposed; several queues may
// share it, each keeping its own exclusivity guarantee.
func WithPool(p *pool.Pool) Option {
	return func(s *settings) error {
		s.pool = p
		return nil
	}
}

// WithPoolConcurrency sets the worker count of the private pool a
// KindPooledExclusive queue creates when WithPool is not given.
func WithPoolConcurrency(n int) Option {
	return func(s *settings) error {
		s.poolConcurrency = n
		return nil
	}
}

// WithExtensions attaches a hook registry; lifecycle events (task
// enqueued/started/completed/failed, queue disposed) are fanned out to
// it.
func WithExtensions(reg *hook.Registry) Option {
	return func(s *settings) error {
		s.hooks = reg
		return nil
	}
}

// WithMiddleware wraps task execution with the given middleware, applied
// in order (first is outermost). The queue's built-in panic containment
// stays outside any middleware.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *settings) error {
		s.mws = append(s.mws, mws...)
		return nil
	}
}

// WithRateLimit caps sustained submissions per second with a
// token-bucket limiter. Posts beyond the budget fail fast with
// ErrRateLimited; nothing ever blocks. A zero limit disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *settings) error {
		s.rateLimit = rate.Limit(limit)
		if burst <= 0 {
			burst = 1
		}
		s.rateBurst = burst
		return nil
	}
}
