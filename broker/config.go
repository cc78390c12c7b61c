package broker

import (
	"time"

	"github.com/jonwraymond/docbroker/observe"
	"github.com/jonwraymond/docbroker/resilience"
	"github.com/jonwraymond/docbroker/resolver"
)

// ChannelMode selects which channels a query may touch.
type ChannelMode int

const (
	// ModePrimaryThenSecondary queries the primary channel and fills in
	// from the secondary when the primary returns no items.
	ModePrimaryThenSecondary ChannelMode = iota

	// ModePrimaryOnly never touches the secondary channel.
	ModePrimaryOnly
)

func (m ChannelMode) String() string {
	switch m {
	case ModePrimaryThenSecondary:
		return "primary-then-secondary"
	case ModePrimaryOnly:
		return "primary-only"
	default:
		return "unknown"
	}
}

// Config configures a Broker. It is read once at construction and never
// again.
type Config struct {
	// CacheMaxEntries bounds the result cache.
	// Default: 1000
	CacheMaxEntries int

	// CacheTTL is how long a cached result stays fresh.
	// Default: 30 days
	CacheTTL time.Duration

	// CacheFile, when set, persists the result cache across restarts.
	CacheFile string

	// FlushEvery batches persistence: every Nth write flushes to disk.
	// Only used when CacheFile is set. Default: 5
	FlushEvery int

	// ResolverTTL is the topic-resolution cache TTL.
	// Default: 7 days
	ResolverTTL time.Duration

	// ResolverTable overrides the offline topic table.
	// If nil, resolver.DefaultTable is used.
	ResolverTable []resolver.Mapping

	// CircuitBreaker tunes the per-channel breaker. Zero values take the
	// resilience package defaults.
	CircuitBreaker resilience.CircuitBreakerConfig

	// Retry tunes the backoff policy. Zero values take the resilience
	// package defaults.
	Retry resilience.RetryConfig

	// RateLimit, when non-nil, throttles upstream calls client-side.
	RateLimit *resilience.RateLimiterConfig

	// RequestTimeout caps each individual upstream attempt.
	// Default: 10 seconds
	RequestTimeout time.Duration

	// FallbackEnabled serves canned placeholder content instead of an
	// error when the upstream cannot be reached.
	FallbackEnabled bool

	// Mode selects channel usage. Default: ModePrimaryThenSecondary
	Mode ChannelMode

	// Logger receives broker diagnostics. Default: no logging.
	Logger observe.Logger

	// Middleware, when non-nil, records a span, metrics, and a log line
	// around every query.
	Middleware *observe.Middleware
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.CacheMaxEntries <= 0 {
		c.CacheMaxEntries = 1000
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 30 * 24 * time.Hour
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 5
	}
	if c.ResolverTTL <= 0 {
		c.ResolverTTL = 7 * 24 * time.Hour
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	return c
}
