package fallback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/jonwraymond/docbroker/knowledge"
)

func TestProvider_Placeholders(t *testing.T) {
	p := New()

	kinds := []knowledge.Kind{
		knowledge.KindDocumentation,
		knowledge.KindExample,
		knowledge.KindBestPractice,
		knowledge.KindTroubleshooting,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			items := p.Provide(kind, "react")
			if len(items) == 0 {
				t.Fatal("Provide() returned no items")
			}
			for _, it := range items {
				if !it.Degraded {
					t.Error("item not marked degraded")
				}
				if it.Source != SourceName {
					t.Errorf("Source = %q, want %q", it.Source, SourceName)
				}
				if err := it.Validate(); err != nil {
					t.Errorf("Validate() = %v", err)
				}
			}
		})
	}
}

func TestProvider_Deterministic(t *testing.T) {
	p := New()

	a, err := json.Marshal(p.Provide(knowledge.KindDocumentation, "react"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(p.Provide(knowledge.KindDocumentation, "react"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("outputs differ:\n%s\n%s", a, b)
	}
}

func TestProvider_Register(t *testing.T) {
	p := New()
	p.Register(knowledge.KindDocumentation, "gin", []knowledge.Item{{
		Kind:    knowledge.KindDocumentation,
		Title:   "Gin offline notes",
		Subject: "gin",
		Doc:     &knowledge.DocDetail{Content: "Use gin.Default() for sensible defaults."},
	}})

	items := p.Provide(knowledge.KindDocumentation, "gin")
	if len(items) != 1 {
		t.Fatalf("Provide() = %d items, want 1", len(items))
	}
	if items[0].Title != "Gin offline notes" {
		t.Errorf("Title = %q, want registered override", items[0].Title)
	}
	if !items[0].Degraded || items[0].Source != SourceName {
		t.Error("registered items must be stamped degraded fallback")
	}

	// Other subjects still get the generic placeholder.
	generic := p.Provide(knowledge.KindDocumentation, "echo")
	if generic[0].Title == "Gin offline notes" {
		t.Error("override leaked to a different subject")
	}
}

func TestProvider_ConcurrentRegisterAndProvide(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			subject := fmt.Sprintf("subject-%d", i%10)
			p.Register(knowledge.KindDocumentation, subject, []knowledge.Item{{
				Kind:    knowledge.KindDocumentation,
				Title:   subject + " notes",
				Subject: subject,
				Doc:     &knowledge.DocDetail{Content: "offline notes"},
			}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			subject := fmt.Sprintf("subject-%d", i%10)
			items := p.Provide(knowledge.KindDocumentation, subject)
			if len(items) == 0 {
				t.Error("Provide() returned no items")
				return
			}
		}
	}()
	wg.Wait()
}

func TestProvider_ProvideCopies(t *testing.T) {
	p := New()
	p.Register(knowledge.KindExample, "vue", []knowledge.Item{{
		Kind:    knowledge.KindExample,
		Title:   "Vue counter",
		Subject: "vue",
		Example: &knowledge.ExampleDetail{Code: "ref(0)"},
	}})

	first := p.Provide(knowledge.KindExample, "vue")
	first[0].Title = "mutated"

	second := p.Provide(knowledge.KindExample, "vue")
	if second[0].Title != "Vue counter" {
		t.Errorf("Title = %q, caller mutation leaked into provider state", second[0].Title)
	}
}
