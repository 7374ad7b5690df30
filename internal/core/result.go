package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScoredItem pairs an input with its vendor relevance score. Index is the
// position in the original input and breaks score ties.
type ScoredItem struct {
	Index    int     `json:"index"`
	Document string  `json:"document"`
	Score    float64 `json:"relevance_score"`
}

// RankedResult is ordered by descending score, then ascending Index.
type RankedResult []ScoredItem

func (r RankedResult) Documents() []string {
	docs := make([]string, len(r))
	for i, item := range r {
		docs[i] = item.Document
	}
	return docs
}

// UsageStats are vendor counters passed through untouched.
type UsageStats struct {
	PromptTokens     int            `json:"prompt_tokens,omitempty"`
	CompletionTokens int            `json:"completion_tokens,omitempty"`
	TotalTokens      int            `json:"total_tokens,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// Envelope carries the identifiers every vendor response shares.
type Envelope struct {
	ID        string     `json:"id,omitempty"`
	Created   int64      `json:"created,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	Usage     UsageStats `json:"usage"`
}

func (e Envelope) CreatedAt() time.Time {
	if e.Created == 0 {
		return time.Time{}
	}
	return time.Unix(e.Created, 0)
}

// BatchJob is an ordered list of independent requests.
type BatchJob []RequestSpec

// BatchEntry is the outcome of one job item. Exactly one of Result and Err is set.
// Entries built by the batch runner hold Result in its JSON form (maps, slices,
// float64) and Err detached from its cause chain.
type BatchEntry struct {
	Index  int    `json:"index"`
	Result any    `json:"result,omitempty"`
	Err    *Error `json:"-"`
}

func (e BatchEntry) OK() bool {
	return e.Err == nil
}

// BatchReport has one entry per job item, in job order.
type BatchReport struct {
	Entries []BatchEntry
}

func (r BatchReport) Len() int {
	return len(r.Entries)
}

func (r BatchReport) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.OK() {
			n++
		}
	}
	return n
}

func (r BatchReport) Failed() int {
	return len(r.Entries) - r.Succeeded()
}

// ErrorKinds counts failures per kind.
func (r BatchReport) ErrorKinds() map[ErrorKind]int {
	kinds := make(map[ErrorKind]int)
	for _, e := range r.Entries {
		if e.Err != nil {
			kinds[e.Err.Kind]++
		}
	}
	return kinds
}

// NormalizeResult converts v into the value encoding/json produces when
// decoding v's encoding into an any.
func NormalizeResult(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return generic, nil
}
