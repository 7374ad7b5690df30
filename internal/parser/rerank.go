package parser

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

type RerankResponse struct {
	core.Envelope
	Items []core.ScoredItem `json:"results"`
}

type rerankEntry struct {
	Index    *int            `json:"index"`
	Score    json.RawMessage `json:"relevance_score"`
	Document json.RawMessage `json:"document"`
}

// ParseRerank validates a rerank body against the number of inputs sent.
// Items keep vendor order; ordering is the ranking package's job.
func ParseRerank(body []byte, nInputs int) (*RerankResponse, error) {
	var raw struct {
		envelope
		Results *[]rerankEntry `json:"results"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Results == nil {
		return nil, missing("results")
	}

	seen := make(map[int]struct{}, len(*raw.Results))
	items := make([]core.ScoredItem, 0, len(*raw.Results))
	for i, entry := range *raw.Results {
		if entry.Index == nil {
			return nil, missing("results[].index")
		}
		idx := *entry.Index
		if idx < 0 || (nInputs >= 0 && idx >= nInputs) {
			return nil, inconsistent("results[%d].index %d outside [0,%d)", i, idx, nInputs)
		}
		if _, dup := seen[idx]; dup {
			return nil, inconsistent("results[%d].index %d is duplicated", i, idx)
		}
		seen[idx] = struct{}{}

		if len(entry.Score) == 0 || string(entry.Score) == "null" {
			return nil, missing("results[].relevance_score")
		}
		var score float64
		if err := json.Unmarshal(entry.Score, &score); err != nil {
			return nil, inconsistent("results[%d].relevance_score is not a number", i)
		}
		if score < 0 || score > 1 {
			return nil, inconsistent("results[%d].relevance_score %v outside [0,1]", i, score)
		}

		items = append(items, core.ScoredItem{
			Index:    idx,
			Document: documentText(entry.Document),
			Score:    score,
		})
	}

	return &RerankResponse{Envelope: raw.envelope.core(), Items: items}, nil
}

// documentText accepts either "text" or {"text": "..."}.
func documentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Text
	}
	return strings.TrimSpace(string(raw))
}
