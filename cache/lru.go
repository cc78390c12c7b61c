package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUConfig configures an LRU store.
type LRUConfig struct {
	// MaxEntries bounds the store. Insertion beyond the bound evicts the
	// least-recently-accessed entry.
	// Default: 1000
	MaxEntries int

	// TTL is applied to every entry at Set time.
	// Default: 30 days
	TTL time.Duration
}

// LRU is a bounded, TTL-aware in-memory store with least-recently-used
// eviction. Recency is bumped on both reads and writes; expiry is checked
// on every read before recency is consulted.
type LRU struct {
	config LRUConfig

	mu    sync.Mutex
	order *list.List // front = most recently used
	items map[string]*list.Element
}

// NewLRU creates a new LRU store.
func NewLRU(config LRUConfig) *LRU {
	// Apply defaults
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.TTL <= 0 {
		config.TTL = 30 * 24 * time.Hour
	}

	return &LRU{
		config: config,
		order:  list.New(),
		items:  make(map[string]*list.Element),
	}
}

// Get retrieves a payload. An entry past its TTL is removed and reported
// as a miss; a live hit moves the entry to the recent end.
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(Entry)
	if ent.Expired(time.Now()) {
		c.removeLocked(elem)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return ent.Payload, true
}

// Set stores a payload under the configured TTL. An existing entry is
// superseded by a fresh one; at capacity the least-recently-used entry is
// evicted first.
func (c *LRU) Set(_ context.Context, key string, payload []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	now := time.Now()
	ent := Entry{
		Key:       key,
		Payload:   payload,
		StoredAt:  now,
		ExpiresAt: now.Add(c.config.TTL),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = ent
		c.order.MoveToFront(elem)
		return nil
	}

	if c.order.Len() >= c.config.MaxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	c.items[key] = c.order.PushFront(ent)
	return nil
}

// Delete removes a payload. Idempotent - no error on miss.
func (c *LRU) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Stats reports current occupancy against the configured bound.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: c.order.Len(), MaxSize: c.config.MaxEntries}
}

// Snapshot returns a copy of all live entries, most recently used first.
func (c *LRU) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entries := make([]Entry, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		ent := elem.Value.(Entry)
		if ent.Expired(now) {
			continue
		}
		entries = append(entries, ent)
	}
	return entries
}

// Restore inserts previously snapshotted entries, preserving their original
// validity windows. Expired entries are skipped.
func (c *LRU) Restore(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	// Iterate oldest-recency first so the snapshot's most recent entry ends
	// up at the front.
	for i := len(entries) - 1; i >= 0; i-- {
		ent := entries[i]
		if ent.Expired(now) || ValidateKey(ent.Key) != nil {
			continue
		}
		if elem, ok := c.items[ent.Key]; ok {
			elem.Value = ent
			c.order.MoveToFront(elem)
			continue
		}
		if c.order.Len() >= c.config.MaxEntries {
			if oldest := c.order.Back(); oldest != nil {
				c.removeLocked(oldest)
			}
		}
		c.items[ent.Key] = c.order.PushFront(ent)
	}
}

func (c *LRU) removeLocked(elem *list.Element) {
	ent := elem.Value.(Entry)
	c.order.Remove(elem)
	delete(c.items, ent.Key)
}

// Ensure LRU implements Store
var _ Store = (*LRU)(nil)
