// Package retry holds the single retry policy applied to upstream fetches.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// Policy is exponential backoff with jitter, bounded by attempts.
type Policy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	Jitter      float64
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
}

// DefaultPolicy retries rate limited calls three times starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    8 * time.Second,
		Jitter:      0.5,
		Retryable:   apperror.IsRetryable,
	}
}

// None runs the operation exactly once.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Notify is called before each wait with the error that caused it.
type Notify func(err error, wait time.Duration)

// Do runs op until it succeeds, returns a non-retryable error, attempts run
// out or ctx is done. The last error is returned as is.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), notify Notify) (T, error) {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = apperror.IsRetryable
	}

	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	b.RandomizationFactor = p.Jitter

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(attempts),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(notify)))
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, opts...)
}
