package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/sandevgo/zhipukit/internal/batch"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_BatchRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	report := core.BatchReport{Entries: []core.BatchEntry{
		{Index: 0, Result: map[string]any{"safe": true, "risk_count": float64(0)}},
		{Index: 1, Result: "plain"},
		{Index: 2, Err: &core.Error{Kind: core.KindHTTP, Status: 429, Code: "1302", Detail: "rate limited"}},
		{Index: 3, Result: []any{"a", float64(2)}},
		{Index: 4, Err: &core.Error{Kind: core.KindTimeout}},
	}}

	snap, err := FromBatch(core.KindModerate, "five inputs", report)
	require.NoError(t, err)

	path, err := store.Save(snap, "moderation")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "moderation.json"), path)

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.KindModerate, loaded.Kind)
	assert.Equal(t, "five inputs", loaded.Query)
	assert.Equal(t, 5, loaded.Total)

	got, err := loaded.Report()
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestFileStore_RankedRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	ranked := core.RankedResult{
		{Index: 1, Document: "深度学习", Score: 0.93},
		{Index: 0, Document: "<b>html</b> & text", Score: 0.41},
	}
	snap := FromRanked(core.KindRerank, "人工智能", ranked, 3)
	snap.Model = "rerank"
	snap.Parameters = map[string]any{"top_k": float64(2)}
	snap.Usage = core.UsageStats{PromptTokens: 12, TotalTokens: 12}
	snap.RequestID = "req-1"

	path, err := store.Save(snap, "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`rerank_[0-9a-f]{8}\.json$`), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// UTF-8 and markup are written verbatim
	assert.Contains(t, string(data), "深度学习")
	assert.Contains(t, string(data), "<b>html</b> & text")

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	got, err := loaded.Ranked()
	require.NoError(t, err)
	assert.Equal(t, ranked, got)

	_, err = loaded.Report()
	assert.Equal(t, core.KindSchemaMismatch, core.KindOf(err))
}

func TestFileStore_LoadRelativeToDir(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Save(FromRanked(core.KindSearch, "q", core.RankedResult{}, 0), "search.json")
	require.NoError(t, err)

	loaded, err := store.Load("search.json")
	require.NoError(t, err)
	assert.Equal(t, core.KindSearch, loaded.Kind)
	assert.Empty(t, loaded.Results)
}

func TestFileStore_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"schema":"zhipukit.snapshot/v1","kind":"rerank","mode":"ranked","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":0,"results":[],"usage":{},"surprise":1}`},
		{"wrong schema", `{"schema":"zhipukit.snapshot/v0","kind":"rerank","mode":"ranked","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":0,"results":[],"usage":{}}`},
		{"unknown kind", `{"schema":"zhipukit.snapshot/v1","kind":"teleport","mode":"ranked","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":0,"results":[],"usage":{}}`},
		{"missing results", `{"schema":"zhipukit.snapshot/v1","kind":"rerank","mode":"ranked","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":0,"usage":{}}`},
		{"missing generated_at", `{"schema":"zhipukit.snapshot/v1","kind":"rerank","mode":"ranked","query_or_input":"q","total_documents":0,"results":[],"usage":{}}`},
		{"ranked row without score", `{"schema":"zhipukit.snapshot/v1","kind":"rerank","mode":"ranked","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":1,"results":[{"index":0,"document":"a"}],"usage":{}}`},
		{"unknown mode", `{"schema":"zhipukit.snapshot/v1","kind":"rerank","mode":"mixed","query_or_input":"q","generated_at":"2025-01-01T00:00:00Z","total_documents":0,"results":[],"usage":{}}`},
		{"not json", `{"schema":`},
	}

	dir := t.TempDir()
	store := NewFileStore(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := store.Load(path)
			require.Error(t, err)
			assert.Equal(t, core.KindSchemaMismatch, core.KindOf(err))
		})
	}
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Save(nil, "x")
	assert.Error(t, err)

	_, err = store.Save(&Snapshot{Kind: core.KindUnknown}, "x")
	assert.Equal(t, core.KindSchemaMismatch, core.KindOf(err))
}

func TestUniqueName(t *testing.T) {
	a, b := UniqueName("rerank"), UniqueName("rerank")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^rerank_[0-9a-f]{8}\.json$`, a)
	assert.Regexp(t, `^result_[0-9a-f]{8}\.json$`, UniqueName(""))
}

type verdict struct {
	Safe  bool            `json:"safe"`
	Risks []string        `json:"risks"`
	Usage core.UsageStats `json:"usage"`
}

func TestFileStore_BatchRunRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	body := []byte(`{"error":{"code":"1302","message":"rate"}}`)
	exec := core.ExecutorFunc(func(ctx context.Context, spec core.RequestSpec) (any, error) {
		switch spec.Path {
		case "ok":
			return &verdict{Safe: true, Risks: []string{}, Usage: core.UsageStats{TotalTokens: 7}}, nil
		case "limited":
			return nil, core.NewHTTPError(429, body)
		default:
			return nil, &core.Error{Kind: core.KindConnection, Cause: errors.New("dial tcp: refused")}
		}
	})
	job := core.BatchJob{
		{Kind: core.KindModerate, Path: "ok"},
		{Kind: core.KindModerate, Path: "limited"},
		{Kind: core.KindModerate, Path: "down"},
	}
	report := batch.Run(context.Background(), job, exec, batch.Options{ConcurrencyLimit: 2})

	snap, err := FromBatch(core.KindModerate, "three inputs", report)
	require.NoError(t, err)
	path, err := store.Save(snap, "")
	require.NoError(t, err)

	loaded, err := store.Load(path)
	require.NoError(t, err)
	got, err := loaded.Report()
	require.NoError(t, err)

	assert.Equal(t, report, got)
	assert.Equal(t, string(body), got.Entries[1].Err.Body)
	assert.Equal(t, "1302", got.Entries[1].Err.Code)
	assert.Contains(t, got.Entries[2].Err.Error(), "dial tcp: refused")
}
