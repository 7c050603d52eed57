// Package retry implements the exponential-backoff retry wrapping every
// adapter call, grounded on the fallback strategy's backoff loop and the
// source's tenacity-style policy (stop after 3 attempts, wait_exponential
// multiplier=1, min=2s, max=10s).
package retry

import (
	"context"
	"math"
	"time"

	"github.com/briefcasebrain/uir-gateway/kinderror"
)

// Policy configures the backoff schedule.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

// DefaultPolicy matches the source's three-attempt, 2s-10s exponential
// backoff.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: 2 * time.Second, Cap: 10 * time.Second}
}

// backoff returns the wait duration before the given retry attempt
// (1-indexed: attempt 1 is the first retry, after the initial call
// failed), doubling from Base and clamped to Cap.
func (p Policy) backoff(attempt int) time.Duration {
	d := time.Duration(float64(p.Base) * math.Pow(2, float64(attempt-1)))
	if d > p.Cap {
		d = p.Cap
	}
	return d
}

// Do invokes fn up to MaxAttempts times, sleeping with exponential backoff
// between attempts. It stops early, without retrying, on any error the
// taxonomy marks non-retryable (kinderror.Retryable reports false) -
// never on validation, auth, circuit-open, or any 4xx other than a
// rate-limit rejection. ctx cancellation aborts the wait immediately.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !kinderror.Retryable(err) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}
		wait := policy.backoff(attempt)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return kinderror.Wrap(kinderror.Timeout, "retry aborted by context", ctx.Err())
		case <-timer.C:
		}
	}
	return lastErr
}
