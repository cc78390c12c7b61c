package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/docbroker/channel"
	"github.com/jonwraymond/docbroker/resilience"
)

// ChannelChecker probes an upstream knowledge channel.
type ChannelChecker struct {
	ch channel.Channel
}

// NewChannelChecker creates a checker around a channel.
func NewChannelChecker(ch channel.Channel) *ChannelChecker {
	return &ChannelChecker{ch: ch}
}

// Name returns the channel's name.
func (c *ChannelChecker) Name() string {
	return c.ch.Name()
}

// Check probes the channel's health endpoint.
func (c *ChannelChecker) Check(ctx context.Context) Result {
	if c.ch.HealthCheck(ctx) {
		return Healthy(fmt.Sprintf("channel %s answering", c.ch.Name()))
	}
	return Unhealthy(fmt.Sprintf("channel %s not answering", c.ch.Name()), ErrCheckFailed)
}

// CircuitChecker reports a circuit breaker's phase as a health status:
// closed is healthy, half-open is degraded, open is unhealthy.
type CircuitChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewCircuitChecker creates a checker around a breaker.
func NewCircuitChecker(name string, breaker *resilience.CircuitBreaker) *CircuitChecker {
	return &CircuitChecker{name: name, breaker: breaker}
}

// Name returns the checker's name.
func (c *CircuitChecker) Name() string {
	return c.name
}

// Check reads the breaker state. It never triggers an upstream probe.
func (c *CircuitChecker) Check(ctx context.Context) Result {
	m := c.breaker.Metrics()
	details := map[string]any{
		"state":                m.State.String(),
		"consecutive_failures": m.ConsecutiveFailures,
	}
	if !m.OpenedAt.IsZero() {
		details["opened_at"] = m.OpenedAt
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open, failing fast", ErrCheckFailed).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing upstream").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
