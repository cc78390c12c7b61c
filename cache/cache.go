package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Store is the interface for the broker's payload caches.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Expiry: Get must never return an entry past its TTL, regardless of
//   recency bookkeeping.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Store interface {
	// Get retrieves a cached payload. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a payload under the store's TTL, evicting if at capacity.
	Set(ctx context.Context, key string, payload []byte) error

	// Delete removes a cached payload. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Len returns the number of live entries.
	Len() int

	// Clear removes all entries.
	Clear()

	// Stats reports current and maximum size.
	Stats() Stats
}

// Stats describes a store's occupancy.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`
}

// Entry is one stored payload with its validity window. Entries are
// immutable once stored; a later Set supersedes rather than mutates.
type Entry struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
