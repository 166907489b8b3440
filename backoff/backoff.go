// Package backoff provides retry delay strategies for failed tasks.
// Strategies are stateless and safe for concurrent use.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy computes the delay before retry attempt n (1-indexed).
// Attempt 1 is the first retry after the initial failure.
type Strategy func(attempt int) time.Duration

// Constant returns the same delay for every attempt.
func Constant(interval time.Duration) Strategy {
	return func(int) time.Duration { return interval }
}

// Linear grows the delay linearly: initial * attempt, capped at max.
// A zero max means uncapped.
func Linear(initial, max time.Duration) Strategy {
	return func(attempt int) time.Duration {
		d := initial * time.Duration(attempt)
		if max > 0 && d > max {
			return max
		}
		return d
	}
}

// Exponential doubles the delay each attempt: initial * 2^(attempt-1),
// capped at max. A zero max means uncapped.
func Exponential(initial, max time.Duration) Strategy {
	return func(attempt int) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
		if max > 0 && d > max {
			return max
		}
		return d
	}
}

// FullJitter picks a random delay in [0, min(initial * 2^(attempt-1), max)].
// The randomness spreads out retries that would otherwise fire together.
func FullJitter(initial, max time.Duration) Strategy {
	return func(attempt int) time.Duration {
		base := float64(initial) * math.Pow(2, float64(attempt-1))
		if max > 0 && base > float64(max) {
			base = float64(max)
		}
		return time.Duration(rand.Float64() * base) //nolint:gosec // jitter intentionally uses non-crypto rand
	}
}

// Default is the strategy used when none is given: full jitter with a
// 100ms base and a 5s cap. Tasks run on serialized queues, so long
// sleeps hold up everything behind them; the cap keeps that bounded.
func Default() Strategy {
	return FullJitter(100*time.Millisecond, 5*time.Second)
}
