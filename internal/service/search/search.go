// Package search runs vendor web searches and normalizes the hits.
package search

import (
	"context"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/internal/ranking"
	"github.com/sandevgo/zhipukit/pkg/conv"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type Client interface {
	Search(ctx context.Context, p zhipu.SearchParams) (*parser.SearchResponse, error)
}

// Hit is one search result with its content flattened to plain text.
type Hit struct {
	Index       int     `json:"index"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Link        string  `json:"link,omitempty"`
	Media       string  `json:"media,omitempty"`
	PublishDate string  `json:"publish_date,omitempty"`
	Score       float64 `json:"score"`
}

type Result struct {
	Query     string                `json:"query"`
	Intents   []parser.SearchIntent `json:"intents,omitempty"`
	Hits      []Hit                 `json:"results"`
	Usage     core.UsageStats       `json:"usage"`
	RequestID string                `json:"request_id,omitempty"`
}

type Service struct {
	client Client
}

func New(client Client) *Service {
	return &Service{client: client}
}

func (s *Service) Search(ctx context.Context, p zhipu.SearchParams) (*Result, error) {
	resp, err := s.client.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(resp.Results))
	for i, r := range resp.Results {
		hits[i] = Hit{
			Index:       i,
			Title:       conv.HTMLToText(r.Title),
			Content:     conv.HTMLToText(r.Content),
			Link:        r.Link,
			Media:       r.Media,
			PublishDate: r.PublishDate,
			Score:       resp.Items[i].Score,
		}
	}

	log.FromCtx(ctx).Debug().
		Int("results", len(hits)).
		Str("request_id", resp.RequestID).
		Msg("search completed")

	return &Result{
		Query:     strings.TrimSpace(p.Query),
		Intents:   resp.Intents,
		Hits:      hits,
		Usage:     resp.Usage,
		RequestID: resp.RequestID,
	}, nil
}

// TopResults keeps the k highest ranked hits.
func (s *Service) TopResults(ctx context.Context, p zhipu.SearchParams, k int) (*Result, error) {
	if err := ranking.ValidateTopK(k); err != nil {
		return nil, err
	}
	res, err := s.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	items := make(core.RankedResult, len(res.Hits))
	for i, h := range res.Hits {
		items[i] = core.ScoredItem{Index: h.Index, Document: h.Content, Score: h.Score}
	}
	top := ranking.TopK(ranking.Rank(items), k)

	hits := make([]Hit, len(top))
	for i, item := range top {
		hits[i] = res.Hits[item.Index]
	}
	res.Hits = hits
	return res, nil
}
