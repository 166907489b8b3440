// Package middleware provides composable middleware for task execution.
// Middleware wraps each task run synchronously and can observe or
// modify it (recover from panics, log, record metrics, add tracing).
//
// Queues apply middleware inside their serialized execution context,
// so middleware runs under the same one-at-a-time guarantee as the
// tasks themselves.
package middleware

import (
	"context"

	"github.com/xraph/strand/hook"
)

// Handler is the terminal function that executes the task logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the info describing the executing task, and the next
// handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, t hook.TaskInfo, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recovery, metrics) executes as:
//
//	logging → recovery → metrics → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, t hook.TaskInfo, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, t, prev)
			}
		}
		return h(ctx)
	}
}
