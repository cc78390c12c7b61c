// Package cache provides the broker's bounded, TTL-aware payload store.
//
// The store couples least-recently-used eviction with per-entry expiry:
// capacity is enforced by recency, but an entry past its TTL is never
// returned no matter how recently it was touched. The Persistent wrapper
// adds best-effort snapshot persistence; the in-memory store remains
// authoritative and disk failures never reach callers.
package cache
