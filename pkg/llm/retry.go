package llm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// retrier schedules repeated attempts with exponential backoff. Delay
// doubles per attempt from initial up to cap, with 25% jitter in either
// direction. A Retry-After hint from the service overrides the computed
// delay when it is longer.
type retrier struct {
	attempts int
	initial  time.Duration
	cap      time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func newRetrier(attempts int, initial, cap time.Duration) *retrier {
	return &retrier{
		attempts: attempts,
		initial:  initial,
		cap:      cap,
		sleep:    sleepContext,
	}
}

// do invokes fn until it succeeds, fails fatally, or attempts run out.
func (r *retrier) do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if sleepErr := r.sleep(ctx, r.delay(attempt, retryAfter(err))); sleepErr != nil {
				return sleepErr
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if !transient(err) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, r.attempts, err)
}

// delay computes the wait before the given attempt (1-based for the
// first retry). hintSeconds comes from a Retry-After header.
func (r *retrier) delay(attempt, hintSeconds int) time.Duration {
	d := r.initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= r.cap {
			d = r.cap
			break
		}
	}
	// +/- 25% jitter to avoid synchronized retries across batches
	jitter := 0.75 + rand.Float64()*0.5
	d = time.Duration(float64(d) * jitter)
	if d > r.cap {
		d = r.cap
	}
	if hint := time.Duration(hintSeconds) * time.Second; hint > d {
		d = hint
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
