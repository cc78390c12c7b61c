package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonwraymond/docbroker/observe"
)

// ErrMissingPath indicates PersistentConfig.Path is empty.
var ErrMissingPath = errors.New("cache: persistence path is required")

// PersistentConfig configures snapshot persistence for an LRU store.
type PersistentConfig struct {
	// Path is the snapshot file. Required.
	Path string

	// FlushEvery batches disk writes: every Nth Set schedules one
	// asynchronous flush.
	// Default: 5
	FlushEvery int

	// Logger receives flush/load diagnostics. Defaults to a nop logger.
	Logger observe.Logger
}

// Persistent wraps an LRU store with best-effort snapshot persistence. The
// in-memory store stays authoritative: a missing or corrupt snapshot never
// fails construction, and flush failures are logged and swallowed.
type Persistent struct {
	*LRU

	path       string
	flushEvery int
	logger     observe.Logger

	countMu sync.Mutex
	sets    int

	flushMu sync.Mutex // serializes snapshot writes
	wg      sync.WaitGroup
}

// NewPersistent creates a persistent store around a fresh LRU, loading any
// existing snapshot at the configured path.
func NewPersistent(lru LRUConfig, config PersistentConfig) (*Persistent, error) {
	if config.Path == "" {
		return nil, ErrMissingPath
	}
	if config.FlushEvery <= 0 {
		config.FlushEvery = 5
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	p := &Persistent{
		LRU:        NewLRU(lru),
		path:       config.Path,
		flushEvery: config.FlushEvery,
		logger:     config.Logger,
	}
	p.load(context.Background())
	return p, nil
}

// Set stores the payload and schedules an asynchronous flush on every Nth
// write.
func (p *Persistent) Set(ctx context.Context, key string, payload []byte) error {
	if err := p.LRU.Set(ctx, key, payload); err != nil {
		return err
	}

	p.countMu.Lock()
	p.sets++
	due := p.sets%p.flushEvery == 0
	p.countMu.Unlock()

	if due {
		p.scheduleFlush(ctx)
	}
	return nil
}

// Clear empties the store and schedules a flush so a restart does not
// resurrect cleared entries.
func (p *Persistent) Clear() {
	p.LRU.Clear()
	p.scheduleFlush(context.Background())
}

// Close waits for in-flight flushes and writes a final synchronous snapshot.
func (p *Persistent) Close(ctx context.Context) error {
	p.wg.Wait()
	return p.flush(ctx)
}

func (p *Persistent) scheduleFlush(ctx context.Context) {
	// Disk writes do not borrow the caller's deadline.
	flushCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.flush(flushCtx); err != nil {
			p.logger.Warn(flushCtx, "cache flush failed",
				observe.Field{Key: "path", Value: p.path},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}()
}

// persistedPair is one [key, entry] element of the snapshot array.
type persistedPair [2]json.RawMessage

func (p *Persistent) flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	entries := p.Snapshot()
	pairs := make([]persistedPair, 0, len(entries))
	for _, ent := range entries {
		key, err := json.Marshal(ent.Key)
		if err != nil {
			continue
		}
		val, err := json.Marshal(ent)
		if err != nil {
			continue
		}
		pairs = append(pairs, persistedPair{key, val})
	}

	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}

	// Write-then-rename so a crash mid-write leaves the old snapshot intact.
	tmp := p.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("cache: create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("cache: replace snapshot: %w", err)
	}
	return nil
}

func (p *Persistent) load(ctx context.Context) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn(ctx, "cache snapshot unreadable, starting empty",
				observe.Field{Key: "path", Value: p.path},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
		return
	}

	var pairs []persistedPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		p.logger.Warn(ctx, "cache snapshot corrupt, starting empty",
			observe.Field{Key: "path", Value: p.path},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	entries := make([]Entry, 0, len(pairs))
	skipped := 0
	for _, pair := range pairs {
		var key string
		var ent Entry
		if json.Unmarshal(pair[0], &key) != nil || json.Unmarshal(pair[1], &ent) != nil {
			skipped++
			continue
		}
		ent.Key = key
		entries = append(entries, ent)
	}
	p.Restore(entries)

	if skipped > 0 {
		p.logger.Warn(ctx, "cache snapshot entries skipped",
			observe.Field{Key: "path", Value: p.path},
			observe.Field{Key: "skipped", Value: skipped},
		)
	}
}

// Ensure Persistent implements Store
var _ Store = (*Persistent)(nil)
