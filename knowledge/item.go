package knowledge

import (
	"errors"
	"fmt"
)

// Kind selects the shape of a knowledge item and the cache-key namespace of
// a query.
type Kind string

const (
	KindDocumentation   Kind = "documentation"
	KindExample         Kind = "example"
	KindBestPractice    Kind = "best-practice"
	KindTroubleshooting Kind = "troubleshooting"
)

// ErrUnknownKind indicates a kind outside the supported set.
var ErrUnknownKind = errors.New("knowledge: unknown kind")

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether the kind is one of the supported set.
func (k Kind) Valid() bool {
	switch k {
	case KindDocumentation, KindExample, KindBestPractice, KindTroubleshooting:
		return true
	default:
		return false
	}
}

// Item is one knowledge result. It is a tagged union: Kind selects which
// detail pointer is populated, and exactly that one.
type Item struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Subject string `json:"subject"`

	// Source names where the item came from: a channel name, or "fallback".
	Source string `json:"source,omitempty"`

	// Degraded marks canned substitute content served because the upstream
	// was unreachable. Degraded items are never cached.
	Degraded bool `json:"degraded,omitempty"`

	Doc             *DocDetail             `json:"doc,omitempty"`
	Example         *ExampleDetail         `json:"example,omitempty"`
	BestPractice    *BestPracticeDetail    `json:"best_practice,omitempty"`
	Troubleshooting *TroubleshootingDetail `json:"troubleshooting,omitempty"`
}

// DocDetail is the documentation shape.
type DocDetail struct {
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
	Version string `json:"version,omitempty"`
}

// ExampleDetail is the code-example shape.
type ExampleDetail struct {
	Code        string `json:"code"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
}

// BestPracticeDetail is the best-practice shape.
type BestPracticeDetail struct {
	Recommendation string `json:"recommendation"`
	Rationale      string `json:"rationale,omitempty"`
}

// TroubleshootingDetail is the troubleshooting-guide shape.
type TroubleshootingDetail struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// Validate checks the tag/detail pairing: a valid kind whose matching
// detail is set and whose other details are nil.
func (it Item) Validate() error {
	if !it.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, it.Kind)
	}

	set := 0
	var match bool
	if it.Doc != nil {
		set++
		match = match || it.Kind == KindDocumentation
	}
	if it.Example != nil {
		set++
		match = match || it.Kind == KindExample
	}
	if it.BestPractice != nil {
		set++
		match = match || it.Kind == KindBestPractice
	}
	if it.Troubleshooting != nil {
		set++
		match = match || it.Kind == KindTroubleshooting
	}

	if set != 1 || !match {
		return fmt.Errorf("knowledge: item detail does not match kind %q", it.Kind)
	}
	return nil
}
