package llm

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryPolicy configures how a single completion is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of provider calls allowed. Minimum 1.
	MaxAttempts int

	// BackoffBase is raised to the attempt index to get the base wait in
	// seconds. Rate-limited attempts use the exponent attempt+2.
	BackoffBase float64

	// MaxElapsed caps the wall-clock time spent on one completion,
	// including waits. Zero disables the ceiling.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy returns 3 attempts with base 2.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BackoffBase: 2.0}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = 2.0
	}
	return p
}

// Backoff returns the wait after the failed attempt with zero-based index
// attempt. jitter must be a uniform sample in [0, 1).
//
// Rate-limit and quota failures wait base^(attempt+2) plus up to 2s of
// jitter (or the provider's Retry-After, if longer). Everything else waits
// base^attempt plus up to 1s.
func (p RetryPolicy) Backoff(attempt int, err error, jitter float64) time.Duration {
	p = p.normalized()

	exp := float64(attempt)
	spread := 1.0
	var rl *ErrRateLimit
	isRateLimit := errors.As(err, &rl)
	if isRateLimit {
		exp += 2
		spread = 2.0
	}

	wait := time.Duration((math.Pow(p.BackoffBase, exp) + jitter*spread) * float64(time.Second))
	if isRateLimit && rl.RetryAfter > wait {
		return rl.RetryAfter
	}
	return wait
}

// retryable reports whether a failed attempt may be repeated. Callers
// check the parent context first, so a deadline here belongs to a single
// attempt and is transient.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
