package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the upstream is considered healthy.
	StateClosed State = iota
	// StateOpen means calls are rejected without reaching the upstream.
	StateOpen
	// StateHalfOpen means a single probe is allowed through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the circuit.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a probe
	// is allowed.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// MonitoringPeriod bounds how long a failure streak stays contiguous.
	// A failure arriving more than MonitoringPeriod after the previous one
	// restarts the streak at 1. Negative disables the bound.
	// Default: 1 minute
	MonitoringPeriod time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count against the streak.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker guards one upstream channel. It fails fast while the
// channel is judged unhealthy and re-probes it after a cooldown.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	lastFailure time.Time
	lastProbeAt time.Time
	probing     bool
}

// NewCircuitBreaker creates a new circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.MonitoringPeriod == 0 {
		config.MonitoringPeriod = time.Minute
	} else if config.MonitoringPeriod < 0 {
		config.MonitoringPeriod = 0
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. While the circuit
// is open it returns ErrCircuitOpen without invoking the operation.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeAttempt(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterAttempt(err)
	return err
}

// State returns the current circuit state, promoting Open to HalfOpen when
// the recovery timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset returns the circuit breaker to the closed state and clears the
// failure streak.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeAttempt() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		// Exactly one trial per half-open window.
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		cb.lastProbeAt = time.Now()
	}

	return nil
}

func (cb *CircuitBreaker) afterAttempt(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state
	now := time.Now()

	switch cb.state {
	case StateClosed:
		if isFailure {
			if cb.config.MonitoringPeriod > 0 && !cb.lastFailure.IsZero() &&
				now.Sub(cb.lastFailure) > cb.config.MonitoringPeriod {
				// The previous streak went stale; this failure starts a new one.
				cb.failures = 1
			} else {
				cb.failures++
			}
			cb.lastFailure = now
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
				cb.openedAt = now
			}
		}
		// A success inside the monitoring window leaves the streak alone;
		// only a stale gap or a half-open probe clears it.

	case StateHalfOpen:
		cb.probing = false
		if isFailure {
			cb.lastFailure = now
			cb.state = StateOpen
			cb.openedAt = now
		} else {
			cb.failures = 0
			cb.state = StateClosed
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.probing = false
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

// Metrics returns a snapshot of the circuit breaker state.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:               cb.currentStateLocked(),
		ConsecutiveFailures: cb.failures,
		OpenedAt:            cb.openedAt,
		LastFailure:         cb.lastFailure,
		LastProbeAt:         cb.lastProbeAt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time
	LastFailure         time.Time
	LastProbeAt         time.Time
}
