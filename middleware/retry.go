package middleware

import (
	"context"
	"time"

	"github.com/xraph/strand/backoff"
	"github.com/xraph/strand/hook"
)

// Retry re-runs a failed task up to retries extra times, sleeping the
// strategy's delay between runs. Retries happen in place on the queue
// goroutine, so ordering and exclusivity hold across attempts; tasks
// behind the failing one wait it out. Keep retries for transient,
// short-lived failures.
//
// A nil strategy uses backoff.Default(). Only the last attempt's error
// is returned. Context cancellation during a delay aborts the retry
// loop.
func Retry(retries int, strategy backoff.Strategy) Middleware {
	if strategy == nil {
		strategy = backoff.Default()
	}
	return func(ctx context.Context, _ hook.TaskInfo, next Handler) error {
		var err error
		for attempt := 0; ; attempt++ {
			err = next(ctx)
			if err == nil || attempt == retries {
				return err
			}
			if !sleep(ctx, strategy(attempt+1)) {
				return err
			}
		}
	}
}

// sleep waits for d or until ctx is done, reporting whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
