// Package resilience provides the failure-handling primitives the broker
// composes around its upstream channels.
//
// # Patterns
//
//   - Circuit Breaker: stops calling a failing channel after a streak of
//     consecutive failures, then re-probes it after a cooldown with a single
//     half-open trial.
//
//   - Retry: retries transient failures with bounded exponential backoff
//     (min(base * multiplier^n, max)).
//
//   - Rate Limiter: token bucket that self-throttles calls at the upstream's
//     published rate.
//
//   - Timeout: bounds how long a caller waits for one attempt without
//     cancelling the attempt itself.
//
// # Usage
//
// Patterns can be used independently or composed:
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  time.Minute,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxRetries: 3,
//	    BaseDelay:  time.Second,
//	    MaxDelay:   10 * time.Second,
//	    Multiplier: 2.0,
//	    RetryIf:    isTransient,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callChannel(ctx)
//	})
package resilience
