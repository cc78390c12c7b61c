package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/docbroker/cache"
	"github.com/jonwraymond/docbroker/channel"
	"github.com/jonwraymond/docbroker/fallback"
	"github.com/jonwraymond/docbroker/knowledge"
	"github.com/jonwraymond/docbroker/observe"
	"github.com/jonwraymond/docbroker/resilience"
	"github.com/jonwraymond/docbroker/resolver"
)

// Upstream request paths.
const (
	searchPath  = "search"
	resolvePath = "resolve"
)

// Broker mediates knowledge queries against unreliable upstream
// channels. It caches results, collapses concurrent identical queries,
// and fails fast or serves fallback content when a channel is unhealthy.
type Broker struct {
	config Config

	primary   channel.Channel
	secondary channel.Channel

	primaryExec   *resilience.Executor
	secondaryExec *resilience.Executor

	keyer      *cache.QueryKeyer
	store      cache.Store
	persistent *cache.Persistent

	resolver *resolver.Resolver
	fallback *fallback.Provider

	group  singleflight.Group
	logger observe.Logger
}

// New creates a broker around a primary channel and an optional
// secondary. A nil secondary degrades Mode to primary-only.
func New(config Config, primary, secondary channel.Channel) (*Broker, error) {
	if primary == nil {
		return nil, ErrMissingPrimary
	}
	config = config.withDefaults()
	if secondary == nil {
		config.Mode = ModePrimaryOnly
	}

	b := &Broker{
		config:    config,
		primary:   primary,
		secondary: secondary,
		keyer:     cache.NewQueryKeyer(),
		fallback:  fallback.New(),
		logger:    config.Logger,
	}

	lruConfig := cache.LRUConfig{
		MaxEntries: config.CacheMaxEntries,
		TTL:        config.CacheTTL,
	}
	if config.CacheFile != "" {
		p, err := cache.NewPersistent(lruConfig, cache.PersistentConfig{
			Path:       config.CacheFile,
			FlushEvery: config.FlushEvery,
			Logger:     config.Logger,
		})
		if err != nil {
			return nil, err
		}
		b.persistent = p
		b.store = p
	} else {
		b.store = cache.NewLRU(lruConfig)
	}

	var limiter *resilience.RateLimiter
	if config.RateLimit != nil {
		limiter = resilience.NewRateLimiter(*config.RateLimit)
	}
	b.primaryExec = b.newExecutor(limiter)
	if secondary != nil {
		b.secondaryExec = b.newExecutor(limiter)
	}

	b.resolver = resolver.New(resolver.Config{
		TTL:    config.ResolverTTL,
		Table:  config.ResolverTable,
		Search: b.searchResourceID,
	})

	return b, nil
}

// newExecutor builds a channel's resilience chain. Each channel gets its
// own breaker; the rate limiter is shared because it models the upstream
// service's quota, not one transport.
func (b *Broker) newExecutor(limiter *resilience.RateLimiter) *resilience.Executor {
	cbConfig := b.config.CircuitBreaker
	if cbConfig.IsFailure == nil {
		cbConfig.IsFailure = isUpstreamFailure
	}

	retryConfig := b.config.Retry
	classify := retryConfig.RetryIf
	if classify == nil {
		classify = isUpstreamFailure
	}
	retryConfig.RetryIf = func(err error) bool {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return false
		}
		return classify(err)
	}

	opts := []resilience.ExecutorOption{
		resilience.WithRetry(resilience.NewRetry(retryConfig)),
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(cbConfig)),
		resilience.WithTimeout(b.config.RequestTimeout),
	}
	if limiter != nil {
		opts = append(opts, resilience.WithRateLimiter(limiter))
	}
	return resilience.NewExecutor(opts...)
}

// isUpstreamFailure classifies errors that indicate upstream trouble:
// transport failures and attempt timeouts. A NotFound answer means the
// upstream is healthy, just empty.
func isUpstreamFailure(err error) bool {
	if err == nil || channel.IsNotFound(err) {
		return false
	}
	return channel.IsTransient(err) || errors.Is(err, resilience.ErrAttemptTimeout)
}

// Query answers one knowledge query.
//
// Cache hits return immediately with no upstream interaction. On a miss,
// concurrent callers for the same key share a single resilient fetch;
// its result is cached and fanned out. When the fetch cannot succeed and
// fallback is enabled, canned degraded content is returned instead of an
// error. Fallback content is never cached.
func (b *Broker) Query(ctx context.Context, kind, subject, version string) ([]knowledge.Item, error) {
	k, err := knowledge.ParseKind(kind)
	if err != nil {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	normalized := cache.NormalizeSubject(subject)
	if normalized == "" {
		return nil, &ValidationError{Field: "subject", Reason: "empty"}
	}

	var items []knowledge.Item
	op := func(ctx context.Context, _ observe.OpMeta) error {
		var opErr error
		items, opErr = b.query(ctx, k, normalized, version)
		return opErr
	}
	if b.config.Middleware != nil {
		op = b.config.Middleware.Wrap(op)
	}

	meta := observe.OpMeta{
		Name:    "query",
		Channel: b.primary.Name(),
		Subject: normalized,
		Version: version,
	}
	if err := op(ctx, meta); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *Broker) query(ctx context.Context, kind knowledge.Kind, subject, version string) ([]knowledge.Item, error) {
	key := b.keyer.Key(string(kind), subject, version)

	if payload, ok := b.store.Get(ctx, key); ok {
		var items []knowledge.Item
		if err := json.Unmarshal(payload, &items); err == nil {
			return items, nil
		}
		// Undecodable entry: drop it and fetch fresh.
		_ = b.store.Delete(ctx, key)
	}

	// Open circuit with no probe due: skip the upstream entirely.
	if b.primaryExec.CircuitBreaker().State() == resilience.StateOpen {
		return b.settle(ctx, kind, subject, ErrUpstreamUnhealthy)
	}

	items, err := b.fetchShared(ctx, key, kind, subject, version)
	if err != nil {
		// A caller that ran out its own context gets the deadline error,
		// not fallback content.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return b.settle(ctx, kind, subject, err)
	}
	return items, nil
}

// fetchShared collapses concurrent fetches of the same key into one
// upstream operation. The operation runs on a detached context so a
// caller's deadline abandons the wait, not the work: the fetch still
// settles, updates the breaker, and populates the cache for later
// callers.
func (b *Broker) fetchShared(ctx context.Context, key string, kind knowledge.Kind, subject, version string) ([]knowledge.Item, error) {
	bgCtx := context.WithoutCancel(ctx)
	ch := b.group.DoChan(key, func() (any, error) {
		items, err := b.fetch(bgCtx, kind, subject, version)
		if err != nil {
			return nil, err
		}
		if payload, merr := json.Marshal(items); merr == nil {
			if serr := b.store.Set(bgCtx, key, payload); serr != nil {
				b.logger.Warn(bgCtx, "cache write failed",
					observe.Field{Key: "key", Value: key},
					observe.Field{Key: "error", Value: serr.Error()})
			}
		}
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]knowledge.Item), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("broker: query abandoned: %w", ctx.Err())
	}
}

// fetch runs the resilient upstream attempt: primary channel first, then
// the secondary as a fill-in when the primary answers with nothing.
func (b *Broker) fetch(ctx context.Context, kind knowledge.Kind, subject, version string) ([]knowledge.Item, error) {
	params := channel.Params{
		"kind":    string(kind),
		"subject": subject,
	}
	if version != "" {
		params["version"] = version
	}

	items, err := b.request(ctx, b.primary, b.primaryExec, searchPath, params)
	if err != nil && !channel.IsNotFound(err) {
		return nil, err
	}

	if len(items) == 0 && b.config.Mode == ModePrimaryThenSecondary {
		fill, ferr := b.request(ctx, b.secondary, b.secondaryExec, searchPath, params)
		if ferr != nil {
			b.logger.Warn(ctx, "secondary channel fill-in failed",
				observe.Field{Key: "channel", Value: b.secondary.Name()},
				observe.Field{Key: "subject", Value: subject},
				observe.Field{Key: "error", Value: ferr.Error()})
		} else {
			items = fill
		}
	}

	if len(items) == 0 {
		return nil, &QueryError{
			Channel: b.primary.Name(),
			Kind:    string(kind),
			Subject: subject,
			Err:     ErrNoResults,
		}
	}
	return items, nil
}

func (b *Broker) request(ctx context.Context, ch channel.Channel, exec *resilience.Executor, path string, params channel.Params) ([]knowledge.Item, error) {
	var items []knowledge.Item
	err := exec.Execute(ctx, func(ctx context.Context) error {
		var reqErr error
		items, reqErr = ch.Request(ctx, path, params)
		return reqErr
	})
	return items, err
}

// settle converts an exhausted failure into the caller-visible outcome:
// fallback content when enabled, a classified error otherwise.
func (b *Broker) settle(ctx context.Context, kind knowledge.Kind, subject string, err error) ([]knowledge.Item, error) {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = fmt.Errorf("%w: %s", ErrUpstreamUnhealthy, b.primary.Name())
	}

	if b.config.FallbackEnabled {
		b.logger.Warn(ctx, "serving fallback content",
			observe.Field{Key: "kind", Value: string(kind)},
			observe.Field{Key: "subject", Value: subject},
			observe.Field{Key: "error", Value: err.Error()})
		return b.fallback.Provide(kind, subject), nil
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		return nil, err
	}
	return nil, &QueryError{
		Channel: b.primary.Name(),
		Kind:    string(kind),
		Subject: subject,
		Err:     err,
	}
}

// Resolve maps a free-text topic to an upstream resource identifier,
// using the resolver's cache and offline table before asking the
// upstream.
func (b *Broker) Resolve(ctx context.Context, topic string) (string, error) {
	return b.resolver.Resolve(ctx, topic)
}

// searchResourceID asks the primary channel to resolve a topic. The
// first item carrying a documentation URL names the resource.
func (b *Broker) searchResourceID(ctx context.Context, topic string) (string, error) {
	items, err := b.request(ctx, b.primary, b.primaryExec, resolvePath, channel.Params{"topic": topic})
	if err != nil {
		if channel.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	for _, it := range items {
		if it.Doc != nil && it.Doc.URL != "" {
			return it.Doc.URL, nil
		}
	}
	return "", nil
}

// RegisterFallback installs a fixed degraded result set for a
// kind/subject pair, replacing the generic placeholder.
func (b *Broker) RegisterFallback(kind knowledge.Kind, subject string, items []knowledge.Item) {
	b.fallback.Register(kind, cache.NormalizeSubject(subject), items)
}

// HealthCheck probes the primary channel. The answer is independent of
// cache contents and does not touch the circuit breaker.
func (b *Broker) HealthCheck(ctx context.Context) bool {
	return b.primary.HealthCheck(ctx)
}

// CacheStats reports result-cache occupancy.
func (b *Broker) CacheStats() cache.Stats {
	return b.store.Stats()
}

// ClearCache drops all cached results and resolutions.
func (b *Broker) ClearCache() {
	b.store.Clear()
	b.resolver.Clear()
}

// CircuitState reports the primary channel's breaker phase.
func (b *Broker) CircuitState() resilience.State {
	return b.primaryExec.CircuitBreaker().State()
}

// Close waits for pending cache flushes and writes a final snapshot.
// It is a no-op for brokers without a cache file.
func (b *Broker) Close(ctx context.Context) error {
	if b.persistent == nil {
		return nil
	}
	return b.persistent.Close(ctx)
}
