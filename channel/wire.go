package channel

import "github.com/jonwraymond/docbroker/knowledge"

// wireItem is the upstream's loose result shape. Both transports share it;
// mapping into knowledge.Item happens here and nowhere else.
type wireItem struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	URL            string `json:"url"`
	Version        string `json:"version"`
	Code           string `json:"code"`
	Language       string `json:"language"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Rationale      string `json:"rationale"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
}

// wireResults is the envelope both transports return their hits in.
type wireResults struct {
	Results []wireItem `json:"results"`
}

// mapItems converts wire items into the tagged union, dropping anything
// that does not map cleanly.
func mapItems(channelName string, raw []wireItem) []knowledge.Item {
	items := make([]knowledge.Item, 0, len(raw))
	for _, w := range raw {
		kind, err := knowledge.ParseKind(w.Type)
		if err != nil {
			continue
		}

		item := knowledge.Item{
			Kind:    kind,
			Title:   w.Title,
			Subject: w.Subject,
			Source:  channelName,
		}
		switch kind {
		case knowledge.KindDocumentation:
			item.Doc = &knowledge.DocDetail{
				Content: w.Content,
				URL:     w.URL,
				Version: w.Version,
			}
		case knowledge.KindExample:
			item.Example = &knowledge.ExampleDetail{
				Code:        w.Code,
				Language:    w.Language,
				Description: w.Description,
			}
		case knowledge.KindBestPractice:
			item.BestPractice = &knowledge.BestPracticeDetail{
				Recommendation: w.Recommendation,
				Rationale:      w.Rationale,
			}
		case knowledge.KindTroubleshooting:
			item.Troubleshooting = &knowledge.TroubleshootingDetail{
				Problem:  w.Problem,
				Solution: w.Solution,
			}
		}

		if item.Validate() != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
