package snapshot

import (
	"fmt"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
)

const SchemaV1 = "zhipukit.snapshot/v1"

type Mode string

const (
	ModeRanked Mode = "ranked"
	ModeBatch  Mode = "batch"
)

// Snapshot is the persisted form of a ranked result or a batch report.
type Snapshot struct {
	Schema      string          `json:"schema"`
	Kind        core.Kind       `json:"kind"`
	Mode        Mode            `json:"mode"`
	Query       string          `json:"query_or_input"`
	Model       string          `json:"model,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Parameters  map[string]any  `json:"parameters,omitempty"`
	Total       int             `json:"total_documents"`
	Results     []Record        `json:"results"`
	Usage       core.UsageStats `json:"usage"`
	RequestID   string          `json:"request_id,omitempty"`
}

// Record is one result row. Ranked rows carry Document and Score, batch
// rows carry Result or Error.
type Record struct {
	Index    int          `json:"index"`
	Document string       `json:"document,omitempty"`
	Score    *float64     `json:"relevance_score,omitempty"`
	Result   any          `json:"result,omitempty"`
	Error    *RecordError `json:"error,omitempty"`
}

// RecordError keeps everything of a *core.Error except the cause chain,
// which is reduced to its message.
type RecordError struct {
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message,omitempty"`
	Status  int            `json:"status,omitempty"`
	Code    string         `json:"code,omitempty"`
	Body    string         `json:"body,omitempty"`
	Cause   string         `json:"cause,omitempty"`
}

func FromRanked(kind core.Kind, query string, ranked core.RankedResult, total int) *Snapshot {
	records := make([]Record, len(ranked))
	for i, item := range ranked {
		score := item.Score
		records[i] = Record{Index: item.Index, Document: item.Document, Score: &score}
	}
	return &Snapshot{
		Schema:      SchemaV1,
		Kind:        kind,
		Mode:        ModeRanked,
		Query:       query,
		GeneratedAt: time.Now().UTC(),
		Total:       total,
		Results:     records,
	}
}

// FromBatch normalizes every entry result through JSON so a loaded
// snapshot compares equal to the one that was saved. Reports from
// batch.Run are already in that form.
func FromBatch(kind core.Kind, input string, report core.BatchReport) (*Snapshot, error) {
	records := make([]Record, len(report.Entries))
	for i, entry := range report.Entries {
		rec := Record{Index: entry.Index}
		if entry.Err != nil {
			rec.Error = &RecordError{
				Kind:    entry.Err.Kind,
				Message: entry.Err.Detail,
				Status:  entry.Err.Status,
				Code:    entry.Err.Code,
				Body:    entry.Err.Body,
			}
			if entry.Err.Cause != nil {
				rec.Error.Cause = entry.Err.Cause.Error()
			}
		} else if entry.Result != nil {
			generic, err := core.NormalizeResult(entry.Result)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", entry.Index, err)
			}
			rec.Result = generic
		}
		records[i] = rec
	}
	return &Snapshot{
		Schema:      SchemaV1,
		Kind:        kind,
		Mode:        ModeBatch,
		Query:       input,
		GeneratedAt: time.Now().UTC(),
		Total:       report.Len(),
		Results:     records,
	}, nil
}

// Ranked rebuilds the ranked result of a ranked snapshot.
func (s *Snapshot) Ranked() (core.RankedResult, error) {
	if s.Mode != ModeRanked {
		return nil, core.NewError(core.KindSchemaMismatch, "snapshot mode is %q, not ranked", s.Mode)
	}
	ranked := make(core.RankedResult, len(s.Results))
	for i, rec := range s.Results {
		ranked[i] = core.ScoredItem{Index: rec.Index, Document: rec.Document, Score: *rec.Score}
	}
	return ranked, nil
}

// Report rebuilds the batch report of a batch snapshot.
func (s *Snapshot) Report() (core.BatchReport, error) {
	if s.Mode != ModeBatch {
		return core.BatchReport{}, core.NewError(core.KindSchemaMismatch, "snapshot mode is %q, not batch", s.Mode)
	}
	entries := make([]core.BatchEntry, len(s.Results))
	for i, rec := range s.Results {
		entry := core.BatchEntry{Index: rec.Index, Result: rec.Result}
		if rec.Error != nil {
			entry.Err = &core.Error{
				Kind:   rec.Error.Kind,
				Detail: rec.Error.Message,
				Status: rec.Error.Status,
				Code:   rec.Error.Code,
				Body:   rec.Error.Body,
				Cause:  core.CauseMessage(rec.Error.Cause),
			}
		}
		entries[i] = entry
	}
	return core.BatchReport{Entries: entries}, nil
}

func (s *Snapshot) validate() error {
	if s.Schema != SchemaV1 {
		return core.NewError(core.KindSchemaMismatch, "unsupported schema %q", s.Schema)
	}
	if s.Kind == core.KindUnknown {
		return core.NewError(core.KindSchemaMismatch, "kind is required")
	}
	if s.GeneratedAt.IsZero() {
		return core.NewError(core.KindSchemaMismatch, "generated_at is required")
	}
	if s.Results == nil {
		return core.NewError(core.KindSchemaMismatch, "results is required")
	}
	switch s.Mode {
	case ModeRanked:
		for i, rec := range s.Results {
			if rec.Score == nil {
				return core.NewError(core.KindSchemaMismatch, "results[%d].relevance_score is required", i)
			}
			if rec.Error != nil || rec.Result != nil {
				return core.NewError(core.KindSchemaMismatch, "results[%d] mixes ranked and batch fields", i)
			}
		}
	case ModeBatch:
		for i, rec := range s.Results {
			if rec.Score != nil {
				return core.NewError(core.KindSchemaMismatch, "results[%d] mixes ranked and batch fields", i)
			}
			if rec.Error != nil && rec.Error.Kind == "" {
				return core.NewError(core.KindSchemaMismatch, "results[%d].error.kind is required", i)
			}
		}
	default:
		return core.NewError(core.KindSchemaMismatch, "unknown mode %q", s.Mode)
	}
	return nil
}
