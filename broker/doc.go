// Package broker answers knowledge queries by mediating between callers
// and unreliable, rate-limited upstream channels.
//
// A query first consults an LRU result cache. On a miss, concurrent
// callers for the same key collapse into one resilient upstream fetch:
// rate-limited, retried with bounded exponential backoff, guarded by a
// per-channel circuit breaker, and capped by a per-attempt timeout. A
// caller whose context expires abandons the wait, but the shared fetch
// keeps running so its outcome still reaches the cache and the breaker.
// When the upstream cannot be reached at all, the broker either serves
// clearly-labeled fallback content or surfaces a classified error.
package broker
