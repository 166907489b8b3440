package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/strand/hook"
)

// Logging returns middleware that logs task start and completion.
// Start is logged at debug level to keep hot queues quiet; failures at
// error level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t hook.TaskInfo, next Handler) error {
		logger.Debug("task started",
			slog.String("queue", t.Queue),
			slog.String("kind", t.Kind),
			slog.Uint64("seq", t.Seq),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("task failed",
				slog.String("queue", t.Queue),
				slog.String("kind", t.Kind),
				slog.Uint64("seq", t.Seq),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("task completed",
				slog.String("queue", t.Queue),
				slog.String("kind", t.Kind),
				slog.Uint64("seq", t.Seq),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
