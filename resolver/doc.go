// Package resolver maps free-text topics to upstream resource
// identifiers.
//
// Resolution tries a local cache, then an ordered offline table, then
// an optional upstream search. Resolved identifiers are cached with a
// TTL independent of the broker's result cache, and concurrent
// resolutions of the same topic share a single upstream call.
package resolver
