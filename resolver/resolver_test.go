package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolver_EmptyTopic(t *testing.T) {
	r := New(Config{})
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("Resolve() = %v, want ErrEmptyTopic", err)
	}
}

func TestResolver_TableExactMatch(t *testing.T) {
	r := New(Config{})
	id, err := r.Resolve(context.Background(), "React")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "/facebook/react" {
		t.Errorf("Resolve() = %q, want /facebook/react", id)
	}
}

func TestResolver_TableSubstringMatch(t *testing.T) {
	r := New(Config{})
	id, err := r.Resolve(context.Background(), "gin routing middleware")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "/gin-gonic/gin" {
		t.Errorf("Resolve() = %q, want /gin-gonic/gin", id)
	}
}

func TestResolver_ExactBeatsSubstring(t *testing.T) {
	r := New(Config{Table: []Mapping{
		{Key: "red", ID: "substring-winner"},
		{Key: "redis", ID: "exact-winner"},
	}})
	id, err := r.Resolve(context.Background(), "redis")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "exact-winner" {
		t.Errorf("Resolve() = %q, want exact-winner (exact before substring)", id)
	}
}

func TestResolver_SubstringFirstMatchWins(t *testing.T) {
	r := New(Config{Table: []Mapping{
		{Key: "vue", ID: "first"},
		{Key: "vuex", ID: "second"},
	}})
	id, err := r.Resolve(context.Background(), "vuex state management")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "first" {
		t.Errorf("Resolve() = %q, want first (definition order)", id)
	}
}

func TestResolver_UpstreamSearch(t *testing.T) {
	var calls atomic.Int32
	r := New(Config{
		Table: []Mapping{},
		Search: func(ctx context.Context, topic string) (string, error) {
			calls.Add(1)
			return "/org/" + topic, nil
		},
	})

	id, err := r.Resolve(context.Background(), "Obscure Lib")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "/org/obscure lib" {
		t.Errorf("Resolve() = %q, want /org/obscure lib", id)
	}

	// Second resolution hits the cache.
	if _, err := r.Resolve(context.Background(), "obscure lib"); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestResolver_UpstreamEmptyNotCached(t *testing.T) {
	var calls atomic.Int32
	r := New(Config{
		Table: []Mapping{},
		Search: func(ctx context.Context, topic string) (string, error) {
			calls.Add(1)
			return "", nil
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(context.Background(), "nothing"); !errors.Is(err, ErrUnresolved) {
			t.Fatalf("Resolve() = %v, want ErrUnresolved", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2 (empty results not cached)", got)
	}
}

func TestResolver_NoSearchConfigured(t *testing.T) {
	r := New(Config{Table: []Mapping{}})
	if _, err := r.Resolve(context.Background(), "anything"); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Resolve() = %v, want ErrUnresolved", err)
	}
}

func TestResolver_ConcurrentSearchShared(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := New(Config{
		Table: []Mapping{},
		Search: func(ctx context.Context, topic string) (string, error) {
			calls.Add(1)
			<-release
			return "/shared/id", nil
		},
	})

	const n = 10
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Resolve(context.Background(), "shared topic")
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			results[i] = id
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	for i, id := range results {
		if id != "/shared/id" {
			t.Errorf("results[%d] = %q, want /shared/id", i, id)
		}
	}
}

func TestResolver_SearchDetachedFromCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(Config{
		Table: []Mapping{},
		Search: func(searchCtx context.Context, topic string) (string, error) {
			cancel()
			if err := searchCtx.Err(); err != nil {
				return "", err
			}
			return "/org/detached", nil
		},
	})

	id, err := r.Resolve(ctx, "detached topic")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want the search to outlive the caller's cancel", err)
	}
	if id != "/org/detached" {
		t.Errorf("Resolve() = %q, want /org/detached", id)
	}
}

func TestResolver_Clear(t *testing.T) {
	r := New(Config{})
	if _, err := r.Resolve(context.Background(), "react"); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
}
