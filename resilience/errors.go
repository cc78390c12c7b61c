package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRetriesExhausted is returned when every retry attempt has failed.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")

	// ErrRateLimitExceeded is returned when the rate limiter has no tokens.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrAttemptTimeout is returned when a single attempt exceeds its deadline.
	ErrAttemptTimeout = errors.New("resilience: attempt timed out")
)
