package apperror

import (
	"context"
	"errors"
)

// HasCode reports whether any AppError in err's chain carries one of codes.
func HasCode(err error, codes ...Code) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		for _, c := range codes {
			if appErr.Code == c {
				return true
			}
		}
		err = appErr.cause
	}
	return false
}

// IsRateLimited reports whether err is an upstream rate limit.
func IsRateLimited(err error) bool {
	return HasCode(err, CodeRateLimitExceeded)
}

// IsRouteUnavailable reports whether no bridge route exists. Insufficient
// liquidity is a narrower form of the same failure.
func IsRouteUnavailable(err error) bool {
	return HasCode(err, CodeRouteUnavailable, CodeInsufficientLiquidity)
}

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	return HasCode(err, CodeValidationError, CodeInvalidInput, CodeInvalidChain, CodeRequiredField)
}

// IsCircuitOpen reports whether a breaker rejected the call.
func IsCircuitOpen(err error) bool {
	return HasCode(err, CodeCircuitOpen, CodeCircuitHalfOpen)
}

// IsRetryable reports whether repeating the call may succeed. Only upstream
// rate limits qualify.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return IsRateLimited(err)
}
