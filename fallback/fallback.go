package fallback

import (
	"fmt"
	"sync"

	"github.com/jonwraymond/docbroker/knowledge"
)

// SourceName marks items produced by this package.
const SourceName = "fallback"

// Provider serves canned placeholder content when the upstream cannot
// be reached. Output depends only on the input, never on network, disk,
// or time. Safe for concurrent use.
type Provider struct {
	mu        sync.RWMutex
	overrides map[overrideKey][]knowledge.Item
}

type overrideKey struct {
	kind    knowledge.Kind
	subject string
}

// New creates a provider serving generic placeholders.
func New() *Provider {
	return &Provider{overrides: make(map[overrideKey][]knowledge.Item)}
}

// Register installs a fixed result set for a kind/subject pair,
// replacing the generic placeholder. Items are stamped as degraded
// fallback content regardless of how they were registered.
func (p *Provider) Register(kind knowledge.Kind, subject string, items []knowledge.Item) {
	stamped := make([]knowledge.Item, len(items))
	for i, it := range items {
		it.Source = SourceName
		it.Degraded = true
		stamped[i] = it
	}

	p.mu.Lock()
	p.overrides[overrideKey{kind: kind, subject: subject}] = stamped
	p.mu.Unlock()
}

// Provide returns the placeholder result set for a query shape. The
// result is always non-empty, always marked degraded, and identical
// across calls with the same input.
func (p *Provider) Provide(kind knowledge.Kind, subject string) []knowledge.Item {
	p.mu.RLock()
	items, ok := p.overrides[overrideKey{kind: kind, subject: subject}]
	p.mu.RUnlock()

	if ok {
		out := make([]knowledge.Item, len(items))
		copy(out, items)
		return out
	}
	return []knowledge.Item{placeholder(kind, subject)}
}

func placeholder(kind knowledge.Kind, subject string) knowledge.Item {
	item := knowledge.Item{
		Kind:     kind,
		Title:    fmt.Sprintf("%s (offline placeholder)", subject),
		Subject:  subject,
		Source:   SourceName,
		Degraded: true,
	}

	switch kind {
	case knowledge.KindExample:
		item.Example = &knowledge.ExampleDetail{
			Code:        fmt.Sprintf("// No live example available for %q.\n// Retry once the knowledge service is reachable.", subject),
			Language:    "text",
			Description: "Placeholder served while the knowledge service is unreachable.",
		}
	case knowledge.KindBestPractice:
		item.BestPractice = &knowledge.BestPracticeDetail{
			Recommendation: fmt.Sprintf("Consult the official %s documentation directly.", subject),
			Rationale:      "The knowledge service is unreachable, so no vetted guidance can be served.",
		}
	case knowledge.KindTroubleshooting:
		item.Troubleshooting = &knowledge.TroubleshootingDetail{
			Problem:  fmt.Sprintf("No troubleshooting data for %q is available offline.", subject),
			Solution: "Retry the query once the knowledge service is reachable.",
		}
	default:
		item.Kind = knowledge.KindDocumentation
		item.Doc = &knowledge.DocDetail{
			Content: fmt.Sprintf("Documentation for %q is temporarily unavailable. This placeholder is served while the knowledge service is unreachable.", subject),
		}
	}

	return item
}
