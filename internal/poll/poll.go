package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted is returned when the attempt budget runs out before
// the check reports done.
var ErrAttemptsExhausted = errors.New("poll: attempts exhausted")

// Policy bounds a poll loop: a fixed number of attempts separated by a fixed
// interval. No backoff.
type Policy struct {
	Attempts int
	Interval time.Duration
	// SleepFirst waits one interval before the first check instead of after
	// a failed one. Used for operations that are never complete immediately
	// after being triggered.
	SleepFirst bool
}

// CheckFunc reports whether the polled condition holds. Errors are treated
// the same as "not yet": the loop keeps its remaining budget and the last
// error is attached to the exhaustion result.
type CheckFunc func(ctx context.Context) (bool, error)

// Until runs check under the policy until it reports done, the context is
// cancelled, or the attempt budget is exhausted. It never sleeps after the
// final check.
func Until(ctx context.Context, p Policy, check CheckFunc) error {
	if p.Attempts < 1 {
		return fmt.Errorf("poll: attempts must be at least 1, got %d", p.Attempts)
	}
	if check == nil {
		return errors.New("poll: check function is nil")
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if p.SleepFirst {
			if err := sleep(ctx, p.Interval); err != nil {
				return err
			}
		}

		done, err := check(ctx)
		if done {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
		}

		if !p.SleepFirst && attempt < p.Attempts {
			if err := sleep(ctx, p.Interval); err != nil {
				return err
			}
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w (last error: %v)", ErrAttemptsExhausted, lastErr)
	}
	return ErrAttemptsExhausted
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
