package parser

import (
	"github.com/sandevgo/zhipukit/internal/core"
)

type SearchIntent struct {
	Query    string `json:"query"`
	Intent   string `json:"intent"`
	Keywords string `json:"keywords"`
}

type SearchResult struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Link        string `json:"link"`
	Media       string `json:"media"`
	Icon        string `json:"icon"`
	Refer       string `json:"refer"`
	PublishDate string `json:"publish_date"`
}

type SearchResponse struct {
	core.Envelope
	Intents []SearchIntent `json:"search_intent,omitempty"`
	Results []SearchResult `json:"search_result"`
	// Items scores results by rank, 1 - i/n, so they can be ranked and
	// filtered like rerank output.
	Items []core.ScoredItem `json:"-"`
}

func ParseSearch(body []byte) (*SearchResponse, error) {
	var raw struct {
		envelope
		Intents []SearchIntent  `json:"search_intent"`
		Results *[]SearchResult `json:"search_result"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Results == nil {
		return nil, missing("search_result")
	}

	results := *raw.Results
	n := len(results)
	items := make([]core.ScoredItem, n)
	for i, r := range results {
		doc := r.Content
		if doc == "" {
			doc = r.Title
		}
		items[i] = core.ScoredItem{
			Index:    i,
			Document: doc,
			Score:    1 - float64(i)/float64(n),
		}
	}

	return &SearchResponse{
		Envelope: raw.envelope.core(),
		Intents:  raw.Intents,
		Results:  results,
		Items:    items,
	}, nil
}
