package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures the attempt timeout.
type TimeoutConfig struct {
	// Timeout is the maximum time to wait for one attempt.
	// Default: 10 seconds
	Timeout time.Duration
}

// Timeout bounds how long a caller waits for one attempt. The operation
// itself is not cancelled when the deadline fires: it keeps running on its
// own goroutine so a shared in-flight fetch can still settle and feed the
// cache and breaker.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Timeout{config: config}
}

// Execute waits up to the configured timeout for the operation to finish.
// On deadline it returns ErrAttemptTimeout; on caller cancellation it
// returns the context error. Either way the operation goroutine runs to
// completion in the background.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	done := make(chan error, 1)

	// The operation deliberately does not inherit the caller's cancellation.
	opCtx := context.WithoutCancel(ctx)
	go func() {
		done <- op(opCtx)
	}()

	timer := time.NewTimer(t.config.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrAttemptTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
