package strand

import "fmt"

// Kind selects the backing mechanism of a queue. The set of variants
// is closed: the factory switches over it exhaustively and rejects
// anything else with ErrUnsupportedKind.
type Kind int

const (
	// KindDispatcherBound serializes tasks onto a pre-existing
	// UI-affine event loop via an ordered event stream.
	KindDispatcherBound Kind = iota + 1

	// KindDedicatedThread owns one exclusive background goroutine
	// pumping a blocking FIFO.
	KindDedicatedThread

	// KindPooledExclusive submits tasks to a shared worker pool
	// through a serializer capped at concurrency 1, with a
	// mutual-exclusion gate as a second line of defense.
	KindPooledExclusive
)

// String returns the kind's wire-stable name.
func (k Kind) String() string {
	switch k {
	case KindDispatcherBound:
		return "dispatcher-bound"
	case KindDedicatedThread:
		return "dedicated-thread"
	case KindPooledExclusive:
		return "pooled-exclusive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec describes the queue to create: which backing mechanism plus a
// diagnostic name. Specs come from the embedding runtime's
// configuration; strand only validates and consumes them.
type Spec struct {
	// Kind is the backing mechanism.
	Kind Kind

	// Name is the queue's diagnostic name, used in logs, hook events
	// and error messages. It carries no identity semantics.
	Name string
}

// Validate reports whether the spec names a known queue kind.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindDispatcherBound, KindDedicatedThread, KindPooledExclusive:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, s.Kind)
	}
}
