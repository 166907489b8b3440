package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/strand/hook"
)

// Recover returns middleware that recovers from panics in the handler
// chain. Panics are converted to errors and logged with a stack trace.
//
// Queues already contain panics in their built-in execution wrapper;
// use Recover when you want panics converted before they reach inner
// middleware such as Metrics or Logging.
func Recover(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t hook.TaskInfo, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("task panicked",
					slog.String("queue", t.Queue),
					slog.Uint64("seq", t.Seq),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in task %d on queue %s: %v", t.Seq, t.Queue, r)
			}
		}()
		return next(ctx)
	}
}
