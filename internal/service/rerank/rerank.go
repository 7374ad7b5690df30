// Package rerank scores documents against a query and keeps the results.
package rerank

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sandevgo/zhipukit/internal/batch"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/ranking"
	"github.com/sandevgo/zhipukit/internal/storage/snapshot"
	"github.com/sandevgo/zhipukit/pkg/log"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// Client is the vendor surface the service needs. Execute must parse
// rerank specs into *parser.RerankResponse indexed by the caller's documents.
type Client interface {
	Rerank(ctx context.Context, query string, docs []string, topN int) (*parser.RerankResponse, error)
	RerankSpec(query string, docs []string, topN int) (core.RequestSpec, []int, error)
	core.Executor
}

type Store interface {
	Save(snap *snapshot.Snapshot, name string) (string, error)
	Load(path string) (*snapshot.Snapshot, error)
}

// Result is a ranked answer for one query.
type Result struct {
	Query          string            `json:"query"`
	Model          string            `json:"model"`
	TotalDocuments int               `json:"total_documents"`
	Parameters     map[string]any    `json:"parameters,omitempty"`
	Results        core.RankedResult `json:"results"`
	Usage          core.UsageStats   `json:"usage"`
	RequestID      string            `json:"request_id,omitempty"`
	Created        int64             `json:"created,omitempty"`
}

type Service struct {
	client    Client
	store     Store
	catalog   core.CatalogRepository
	counter   TokenCounter
	model     string
	maxTokens int
	batchOpts batch.Options
}

type Option func(*Service)

func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithMaxDocumentTokens rejects larger documents locally. Zero disables the check.
func WithMaxDocumentTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

func WithTokenCounter(c TokenCounter) Option {
	return func(s *Service) { s.counter = c }
}

func WithBatchOptions(o batch.Options) Option {
	return func(s *Service) { s.batchOpts = o }
}

// New builds the service. catalog may be nil.
func New(client Client, store Store, catalog core.CatalogRepository, opts ...Option) *Service {
	s := &Service{
		client:    client,
		store:     store,
		catalog:   catalog,
		counter:   &tiktokenCounter{},
		model:     "rerank",
		batchOpts: batch.Options{ConcurrencyLimit: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models lists the rerank models the vendor serves.
func (s *Service) Models() []string {
	return []string{s.model}
}

func (s *Service) Rerank(ctx context.Context, query string, docs []string) (*Result, error) {
	if err := s.checkTokens(docs); err != nil {
		return nil, err
	}

	resp, err := s.client.Rerank(ctx, query, docs, 0)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, query, docs, resp), nil
}

func (s *Service) result(ctx context.Context, query string, docs []string, resp *parser.RerankResponse) *Result {
	total := countNonBlank(docs)

	log.FromCtx(ctx).Debug().
		Int("documents", total).
		Int("scored", len(resp.Items)).
		Str("request_id", resp.RequestID).
		Msg("rerank completed")

	return &Result{
		Query:          strings.TrimSpace(query),
		Model:          s.model,
		TotalDocuments: total,
		Results:        ranking.Rank(resp.Items),
		Usage:          resp.Usage,
		RequestID:      resp.RequestID,
		Created:        resp.Created,
	}
}

// TopRelevant keeps the k best documents.
func (s *Service) TopRelevant(ctx context.Context, query string, docs []string, k int) (*Result, error) {
	if err := ranking.ValidateTopK(k); err != nil {
		return nil, err
	}
	res, err := s.Rerank(ctx, query, docs)
	if err != nil {
		return nil, err
	}
	res.Results = ranking.TopK(res.Results, k)
	res.Parameters = map[string]any{"top_k": k}
	return res, nil
}

// RelevantByThreshold keeps documents scoring at least t.
func (s *Service) RelevantByThreshold(ctx context.Context, query string, docs []string, t float64) (*Result, error) {
	if err := ranking.ValidateThreshold(t); err != nil {
		return nil, err
	}
	res, err := s.Rerank(ctx, query, docs)
	if err != nil {
		return nil, err
	}
	res.Results = ranking.ByThreshold(res.Results, t)
	res.Parameters = map[string]any{"threshold": t}
	return res, nil
}

// RerankBatch ranks the same documents against several queries. Entry
// results are the JSON form of Result.
func (s *Service) RerankBatch(ctx context.Context, queries []string, docs []string) (core.BatchReport, error) {
	if len(queries) == 0 {
		return core.BatchReport{}, core.NewError(core.KindEmptyInput, "queries are empty")
	}
	if err := s.checkTokens(docs); err != nil {
		return core.BatchReport{}, err
	}

	build := func(i int) (core.RequestSpec, error) {
		spec, _, err := s.client.RerankSpec(queries[i], docs, 0)
		return spec, err
	}
	exec := func(ctx context.Context, i int, spec core.RequestSpec) (any, error) {
		parsed, err := s.client.Execute(ctx, spec)
		if err != nil {
			return nil, err
		}
		resp, ok := parsed.(*parser.RerankResponse)
		if !ok {
			return nil, core.NewError(core.KindInconsistent, "rerank parsed into %T", parsed)
		}
		return s.result(ctx, queries[i], docs, resp), nil
	}
	return batch.RunEach(ctx, len(queries), build, exec, s.batchOpts), nil
}

// Save writes res to the store and indexes it. An empty name is generated.
func (s *Service) Save(ctx context.Context, res *Result, name string) (string, error) {
	snap := snapshot.FromRanked(core.KindRerank, res.Query, res.Results, res.TotalDocuments)
	snap.Model = res.Model
	snap.Parameters = res.Parameters
	snap.Usage = res.Usage
	snap.RequestID = res.RequestID
	if name == "" {
		name = snapshot.UniqueName("rerank")
	}

	path, err := s.store.Save(snap, name)
	if err != nil {
		return "", err
	}
	s.record(ctx, path, res.Query, len(res.Results))
	return path, nil
}

func (s *Service) SaveBatch(ctx context.Context, input string, report core.BatchReport, name string) (string, error) {
	snap, err := snapshot.FromBatch(core.KindRerank, input, report)
	if err != nil {
		return "", err
	}
	snap.Model = s.model
	if name == "" {
		name = snapshot.UniqueName("rerank_batch")
	}
	path, err := s.store.Save(snap, name)
	if err != nil {
		return "", err
	}
	s.record(ctx, path, input, report.Len())
	return path, nil
}

func (s *Service) Load(path string) (*snapshot.Snapshot, error) {
	return s.store.Load(path)
}

func (s *Service) record(ctx context.Context, path, query string, count int) {
	if s.catalog == nil {
		return
	}
	err := s.catalog.Record(ctx, core.CatalogEntry{
		Kind:        core.KindRerank,
		Name:        filepath.Base(path),
		Path:        path,
		Query:       query,
		ResultCount: count,
	})
	if err != nil {
		// the snapshot stays on disk when indexing fails
		log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to catalog snapshot")
	}
}

func (s *Service) checkTokens(docs []string) error {
	if s.maxTokens <= 0 || s.counter == nil {
		return nil
	}
	for i, d := range docs {
		if n := s.counter.Count(d); n > s.maxTokens {
			return core.NewError(core.KindOutOfRange, "document %d has %d tokens, limit is %d", i, n, s.maxTokens)
		}
	}
	return nil
}
