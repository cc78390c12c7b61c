package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/docbroker/channel"
	"github.com/jonwraymond/docbroker/knowledge"
	"github.com/jonwraymond/docbroker/resilience"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	if r := Healthy("ok"); r.Status != StatusHealthy || r.Message != "ok" || r.Timestamp.IsZero() {
		t.Errorf("Healthy() = %+v", r)
	}
	if r := Degraded("slow"); r.Status != StatusDegraded {
		t.Errorf("Degraded() = %+v", r)
	}

	cause := errors.New("down")
	r := Unhealthy("down", cause)
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, cause) {
		t.Errorf("Unhealthy() = %+v", r)
	}

	r = Healthy("ok").WithDetails(map[string]any{"n": 1})
	if r.Details["n"] != 1 {
		t.Errorf("WithDetails() = %+v", r.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	c := NewCheckerFunc("custom", func(ctx context.Context) Result {
		return Healthy("fine")
	})
	if c.Name() != "custom" {
		t.Errorf("Name() = %q, want custom", c.Name())
	}
	if got := c.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("Check() = %+v", got)
	}
}

// probeChannel is a channel stub with a switchable health answer.
type probeChannel struct {
	name    string
	healthy atomic.Bool
}

func (p *probeChannel) Name() string { return p.name }

func (p *probeChannel) Request(context.Context, string, channel.Params) ([]knowledge.Item, error) {
	return nil, nil
}

func (p *probeChannel) HealthCheck(context.Context) bool { return p.healthy.Load() }

func TestChannelChecker(t *testing.T) {
	ch := &probeChannel{name: "primary"}
	ch.healthy.Store(true)
	c := NewChannelChecker(ch)

	if c.Name() != "primary" {
		t.Errorf("Name() = %q, want primary", c.Name())
	}
	if got := c.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("Check() = %+v, want healthy", got)
	}

	ch.healthy.Store(false)
	got := c.Check(context.Background())
	if got.Status != StatusUnhealthy {
		t.Errorf("Check() = %+v, want unhealthy", got)
	}
	if !errors.Is(got.Error, ErrCheckFailed) {
		t.Errorf("Error = %v, want ErrCheckFailed", got.Error)
	}
}

func TestCircuitChecker(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
	})
	c := NewCircuitChecker("primary-circuit", breaker)

	if got := c.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("closed circuit Check() = %+v, want healthy", got)
	}

	_ = breaker.Execute(context.Background(), func(context.Context) error {
		return errors.New("upstream down")
	})

	got := c.Check(context.Background())
	if got.Status != StatusUnhealthy {
		t.Errorf("open circuit Check() = %+v, want unhealthy", got)
	}
	if got.Details["state"] != "open" {
		t.Errorf("Details[state] = %v, want open", got.Details["state"])
	}
}
