package strand

import (
	"log/slog"

	"github.com/xraph/strand/pool"
)

// New creates the queue described by spec. The handler is mandatory:
// it is the only channel through which task failures surface, so a
// queue without one would swallow errors silently.
//
// KindDispatcherBound additionally requires WithDispatcher.
// KindPooledExclusive uses the pool from WithPool if given, otherwise
// it creates and starts a private pool that disposal stops again.
//
// Unrecognized kinds fail with ErrUnsupportedKind. That path is a
// programming-error guard, not a configuration surface: specs come
// from an enumerated set.
func New(spec Spec, handler ErrorHandler, opts ...Option) (Queue, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s := settings{
		logger:          slog.Default(),
		poolConcurrency: pool.DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	switch spec.Kind {
	case KindDispatcherBound:
		if s.loop == nil {
			return nil, ErrNoDispatcher
		}
		return newDispatcherQueue(spec, handler, &s), nil

	case KindDedicatedThread:
		return newDedicatedQueue(spec, handler, &s), nil

	case KindPooledExclusive:
		p := s.pool
		ownsPool := false
		if p == nil {
			p = pool.New(
				pool.WithConcurrency(s.poolConcurrency),
				pool.WithLogger(s.logger),
			)
			p.Start()
			ownsPool = true
		}
		return newPooledQueue(spec, handler, &s, p, ownsPool), nil

	default:
		// Validate already rejected this; keep the guard anyway.
		return nil, ErrUnsupportedKind
	}
}
