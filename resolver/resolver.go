package resolver

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/docbroker/cache"
)

// SearchFunc asks the upstream to resolve a free-text topic into a
// resource identifier. An empty identifier with a nil error means the
// upstream had no match.
type SearchFunc func(ctx context.Context, topic string) (string, error)

// Mapping is one entry of the offline table. Topics matching Key
// (exactly or as a substring) resolve to ID without an upstream call.
type Mapping struct {
	Key string
	ID  string
}

// Config configures the topic resolver.
type Config struct {
	// TTL is how long a resolved identifier stays cached.
	// Default: 7 days
	TTL time.Duration

	// MaxEntries bounds the resolution cache.
	// Default: 500
	MaxEntries int

	// Table is consulted before the upstream, in order. First match wins.
	// If nil, DefaultTable is used.
	Table []Mapping

	// Search resolves topics the table does not cover. Optional; when
	// nil, unmatched topics return ErrUnresolved.
	Search SearchFunc
}

// DefaultTable covers the topics the broker is most often asked about,
// so common lookups never need the upstream.
var DefaultTable = []Mapping{
	{Key: "react", ID: "/facebook/react"},
	{Key: "next.js", ID: "/vercel/next.js"},
	{Key: "nextjs", ID: "/vercel/next.js"},
	{Key: "vue", ID: "/vuejs/core"},
	{Key: "gin", ID: "/gin-gonic/gin"},
	{Key: "echo", ID: "/labstack/echo"},
	{Key: "express", ID: "/expressjs/express"},
	{Key: "django", ID: "/django/django"},
	{Key: "flask", ID: "/pallets/flask"},
	{Key: "kubernetes", ID: "/kubernetes/kubernetes"},
	{Key: "terraform", ID: "/hashicorp/terraform"},
	{Key: "postgres", ID: "/postgres/postgres"},
	{Key: "redis", ID: "/redis/redis"},
}

// Resolver maps free-text topics to upstream resource identifiers. It
// keeps its own cache, separate from the broker's result cache, because
// identifiers change far less often than content.
type Resolver struct {
	config Config
	store  *cache.LRU
	group  singleflight.Group
}

// New creates a resolver.
func New(config Config) *Resolver {
	if config.TTL == 0 {
		config.TTL = 7 * 24 * time.Hour
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = 500
	}
	if config.Table == nil {
		config.Table = DefaultTable
	}

	return &Resolver{
		config: config,
		store: cache.NewLRU(cache.LRUConfig{
			MaxEntries: config.MaxEntries,
			TTL:        config.TTL,
		}),
	}
}

// Resolve maps a topic to a resource identifier. Order: cached result,
// offline table, upstream search. Non-empty identifiers are cached
// before being returned.
func (r *Resolver) Resolve(ctx context.Context, topic string) (string, error) {
	normalized := cache.NormalizeSubject(topic)
	if normalized == "" {
		return "", ErrEmptyTopic
	}

	key := "resolve:" + normalized
	if payload, ok := r.store.Get(ctx, key); ok {
		return string(payload), nil
	}

	if id := r.lookupTable(normalized); id != "" {
		_ = r.store.Set(ctx, key, []byte(id))
		return id, nil
	}

	if r.config.Search == nil {
		return "", ErrUnresolved
	}

	// Concurrent resolutions of the same topic share one upstream call.
	// The call runs detached so one caller's cancellation cannot abort
	// the resolution the other waiters share.
	searchCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(normalized, func() (any, error) {
		return r.config.Search(searchCtx, normalized)
	})
	if err != nil {
		return "", err
	}

	id, _ := v.(string)
	if id == "" {
		return "", ErrUnresolved
	}

	_ = r.store.Set(ctx, key, []byte(id))
	return id, nil
}

// lookupTable checks exact matches first, then substring matches, both
// in table-definition order.
func (r *Resolver) lookupTable(topic string) string {
	for _, m := range r.config.Table {
		if m.Key == topic {
			return m.ID
		}
	}
	for _, m := range r.config.Table {
		if strings.Contains(topic, m.Key) {
			return m.ID
		}
	}
	return ""
}

// Len reports how many resolutions are cached.
func (r *Resolver) Len() int { return r.store.Len() }

// Clear drops all cached resolutions.
func (r *Resolver) Clear() { r.store.Clear() }
