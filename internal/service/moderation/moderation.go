// Package moderation checks text against the vendor content safety model.
package moderation

import (
	"context"
	"path/filepath"

	"github.com/sandevgo/zhipukit/internal/batch"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/storage/snapshot"
	"github.com/sandevgo/zhipukit/pkg/log"
)

// Client is the vendor surface the service needs. Execute must parse
// moderation specs into *parser.ModerationVerdict.
type Client interface {
	Moderate(ctx context.Context, text string) (*parser.ModerationVerdict, error)
	ModerateSpec(text string) (core.RequestSpec, error)
	core.Executor
}

type Store interface {
	Save(snap *snapshot.Snapshot, name string) (string, error)
}

type Result struct {
	Safe      bool               `json:"safe"`
	Summary   parser.RiskSummary `json:"summary"`
	Usage     core.UsageStats    `json:"usage"`
	RequestID string             `json:"request_id,omitempty"`
}

type Service struct {
	client    Client
	store     Store
	catalog   core.CatalogRepository
	batchOpts batch.Options
}

type Option func(*Service)

func WithBatchOptions(o batch.Options) Option {
	return func(s *Service) { s.batchOpts = o }
}

func New(client Client, store Store, catalog core.CatalogRepository, opts ...Option) *Service {
	s := &Service{
		client:    client,
		store:     store,
		catalog:   catalog,
		batchOpts: batch.Options{ConcurrencyLimit: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Moderate(ctx context.Context, text string) (*Result, error) {
	verdict, err := s.client.Moderate(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, verdict), nil
}

func (s *Service) result(ctx context.Context, verdict *parser.ModerationVerdict) *Result {
	res := &Result{
		Safe:      verdict.Safe(),
		Summary:   verdict.Summary(),
		Usage:     verdict.Usage,
		RequestID: verdict.RequestID,
	}
	log.FromCtx(ctx).Debug().
		Bool("safe", res.Safe).
		Int("risks", res.Summary.RiskCount).
		Str("request_id", res.RequestID).
		Msg("moderation completed")
	return res
}

// BatchModerate checks every text independently. Entry results are the
// JSON form of Result.
func (s *Service) BatchModerate(ctx context.Context, texts []string) (core.BatchReport, error) {
	if len(texts) == 0 {
		return core.BatchReport{}, core.NewError(core.KindEmptyInput, "texts are empty")
	}
	build := func(i int) (core.RequestSpec, error) {
		return s.client.ModerateSpec(texts[i])
	}
	exec := func(ctx context.Context, _ int, spec core.RequestSpec) (any, error) {
		parsed, err := s.client.Execute(ctx, spec)
		if err != nil {
			return nil, err
		}
		verdict, ok := parsed.(*parser.ModerationVerdict)
		if !ok {
			return nil, core.NewError(core.KindInconsistent, "moderation parsed into %T", parsed)
		}
		return s.result(ctx, verdict), nil
	}
	return batch.RunEach(ctx, len(texts), build, exec, s.batchOpts), nil
}

// Save keeps a single verdict as a one-entry batch snapshot.
func (s *Service) Save(ctx context.Context, text string, res *Result, name string) (string, error) {
	report := core.BatchReport{Entries: []core.BatchEntry{{Index: 0, Result: res}}}
	return s.save(ctx, text, report, name, "moderation")
}

func (s *Service) SaveBatch(ctx context.Context, input string, report core.BatchReport, name string) (string, error) {
	return s.save(ctx, input, report, name, "moderation_batch")
}

func (s *Service) save(ctx context.Context, input string, report core.BatchReport, name, prefix string) (string, error) {
	snap, err := snapshot.FromBatch(core.KindModerate, input, report)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = snapshot.UniqueName(prefix)
	}
	path, err := s.store.Save(snap, name)
	if err != nil {
		return "", err
	}

	if s.catalog != nil {
		err := s.catalog.Record(ctx, core.CatalogEntry{
			Kind:        core.KindModerate,
			Name:        filepath.Base(path),
			Path:        path,
			Query:       input,
			ResultCount: report.Len(),
		})
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to catalog snapshot")
		}
	}
	return path, nil
}
