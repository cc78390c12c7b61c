package cache

import "strings"

// Keyer derives deterministic cache keys from a query's identity.
//
// Contract:
// - Determinism: same inputs must produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a cache key from query kind, subject, and optional version.
	Key(kind, subject, version string) string
}

// QueryKeyer is the default key derivation.
// Format: query:<kind>:<subject> or query:<kind>:<subject>@<version>
// with the subject lowercased and inner whitespace collapsed, so
// "React Router" and "react  router" share an entry.
type QueryKeyer struct{}

// NewQueryKeyer creates the default keyer.
func NewQueryKeyer() *QueryKeyer {
	return &QueryKeyer{}
}

// Key derives the cache key for one query.
func (k *QueryKeyer) Key(kind, subject, version string) string {
	key := "query:" + NormalizeSubject(kind) + ":" + NormalizeSubject(subject)
	if v := strings.TrimSpace(version); v != "" {
		key += "@" + v
	}
	return key
}

// NormalizeSubject canonicalizes a free-text subject for keying: trimmed,
// lowercased, runs of whitespace collapsed to one space.
func NormalizeSubject(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(subject)), " ")
}

// Ensure QueryKeyer implements Keyer
var _ Keyer = (*QueryKeyer)(nil)
