package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkLRU_Get measures hit-path overhead.
func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU(LRUConfig{MaxEntries: 1000, TTL: time.Hour})
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("payload"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(ctx, fmt.Sprintf("k%d", i%1000))
	}
}

// BenchmarkLRU_Set measures write-path overhead including eviction.
func BenchmarkLRU_Set(b *testing.B) {
	c := NewLRU(LRUConfig{MaxEntries: 1000, TTL: time.Hour})
	ctx := context.Background()
	payload := []byte("payload")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i%2000), payload)
	}
}

// BenchmarkQueryKeyer measures key derivation.
func BenchmarkQueryKeyer(b *testing.B) {
	k := NewQueryKeyer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = k.Key("documentation", "React Router", "6")
	}
}
