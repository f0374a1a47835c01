// Package ratelimit paces outbound calls to rate-limited upstreams.
package ratelimit

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// Limiter paces calls to one named upstream.
type Limiter struct {
	upstream string
	limiter  *rate.Limiter
}

// New allows requestsPerMinute against upstream with a burst of a tenth of
// that (at least 1). A non-positive rate means unlimited.
func New(upstream string, requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return &Limiter{upstream: upstream, limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	burst := max(requestsPerMinute/10, 1)
	return &Limiter{
		upstream: upstream,
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Wait blocks until the upstream may be called. Cancellation is returned as
// is; a wait that cannot finish before the deadline is a local rate limit.
func (l *Limiter) Wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err == nil || ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return err
	}
	return apperror.New(apperror.CodeRateLimitExceeded,
		apperror.WithContext(l.upstream),
		apperror.WithMessage("local rate limit for "+l.upstream),
		apperror.WithCause(err))
}

func (l *Limiter) Upstream() string { return l.upstream }

func (l *Limiter) Burst() int { return l.limiter.Burst() }
