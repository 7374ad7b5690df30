package parser

import (
	"sort"

	"github.com/sandevgo/zhipukit/internal/core"
)

type EmbeddingResponse struct {
	core.Envelope
	Model string `json:"model"`
	// Vectors is ordered by input position.
	Vectors [][]float64 `json:"vectors"`
}

func (r EmbeddingResponse) Dimensions() int {
	if len(r.Vectors) == 0 {
		return 0
	}
	return len(r.Vectors[0])
}

func ParseEmbedding(body []byte) (*EmbeddingResponse, error) {
	var raw struct {
		envelope
		Model string `json:"model"`
		Data  *[]struct {
			Index     *int      `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil {
		return nil, missing("data")
	}

	data := *raw.Data
	order := make([]int, len(data))
	seen := make(map[int]struct{}, len(data))
	for i, d := range data {
		if d.Embedding == nil {
			return nil, missing("data[].embedding")
		}
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		if idx < 0 || idx >= len(data) {
			return nil, inconsistent("data[%d].index %d outside [0,%d)", i, idx, len(data))
		}
		if _, dup := seen[idx]; dup {
			return nil, inconsistent("data[%d].index %d is duplicated", i, idx)
		}
		seen[idx] = struct{}{}
		order[i] = idx
	}

	positions := make([]int, len(data))
	for i := range positions {
		positions[i] = i
	}
	sort.Slice(positions, func(a, b int) bool { return order[positions[a]] < order[positions[b]] })

	vectors := make([][]float64, len(data))
	for i, p := range positions {
		vectors[i] = data[p].Embedding
	}
	return &EmbeddingResponse{Envelope: raw.envelope.core(), Model: raw.Model, Vectors: vectors}, nil
}
