package strand

import "errors"

var (
	// Argument errors.
	ErrNilTask    = errors.New("strand: nil task")
	ErrNilHandler = errors.New("strand: nil error handler")

	// State errors.
	ErrDisposed    = errors.New("strand: queue disposed")
	ErrRateLimited = errors.New("strand: submission rate limited")

	// Construction errors.
	ErrUnsupportedKind = errors.New("strand: unsupported queue kind")
	ErrNoDispatcher    = errors.New("strand: dispatcher-bound queue requires a loop")
)
