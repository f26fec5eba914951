package infra

import (
	"time"
)

const (
	// Retry delays for registry gateway calls. Short base: these sit on a
	// user-facing path, not a background sync.
	baseDelay = 500 * time.Millisecond
	maxDelay  = 30 * time.Second
)

// CalculateBackoff returns the exponential backoff duration for a given retry
// count: baseDelay * 2^retryCount, capped at maxDelay. A negative retryCount
// returns baseDelay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseDelay
	}

	// 2^30 already exceeds maxDelay by orders of magnitude; cap early to
	// avoid shift overflow.
	if retryCount > 30 {
		return maxDelay
	}

	backoff := baseDelay * time.Duration(1<<retryCount)

	if backoff > maxDelay {
		return maxDelay
	}

	return backoff
}
