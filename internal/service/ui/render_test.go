package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "multi\nline   text", n: 20, want: "multi line text"},
		{in: "你好世界你好", n: 4, want: "你好世界..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Preview(tt.in, tt.n))
	}
}

func TestRenderRanked(t *testing.T) {
	var buf bytes.Buffer
	RenderRanked(&buf, "TOP", core.RankedResult{
		{Index: 1, Document: "B doc", Score: 0.9},
		{Index: 0, Document: "A doc", Score: 0.2},
	}, 3)

	out := buf.String()
	assert.Contains(t, out, "0.9000")
	assert.Contains(t, out, "[#1]")
	assert.Contains(t, out, "2 of 3 documents")
	assert.Less(t, strings.Index(out, "B doc"), strings.Index(out, "A doc"))

	buf.Reset()
	RenderRanked(&buf, "TOP", nil, 0)
	assert.Contains(t, buf.String(), "no documents matched")
}

func TestRenderModeration(t *testing.T) {
	var buf bytes.Buffer
	RenderModeration(&buf, false, parser.RiskSummary{
		Flagged:      true,
		HighestLevel: parser.RiskHigh,
		RiskTypes:    []string{"violence"},
		Details:      []parser.RiskResult{{ContentType: "text", RiskLevel: "high", RiskTypes: []string{"violence"}}},
	})
	assert.Contains(t, buf.String(), "UNSAFE")
	assert.Contains(t, buf.String(), "violence")

	buf.Reset()
	RenderModeration(&buf, true, parser.RiskSummary{HighestLevel: parser.RiskLow})
	assert.Contains(t, buf.String(), "SAFE")
}

func TestRenderBatch(t *testing.T) {
	var buf bytes.Buffer
	RenderBatch(&buf, core.BatchReport{Entries: []core.BatchEntry{
		{Index: 0, Result: "ok"},
		{Index: 1, Err: &core.Error{Kind: core.KindTimeout, Detail: "slow"}},
	}})
	out := buf.String()
	assert.Contains(t, out, "1 succeeded")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "#1 transport.timeout slow")
}

func TestRenderCatalog(t *testing.T) {
	var buf bytes.Buffer
	RenderCatalog(&buf, []core.CatalogEntry{{Kind: core.KindRerank, Name: "rerank_1.json", Query: "go", ResultCount: 2, CreatedAt: time.Now()}})
	assert.Contains(t, buf.String(), "rerank_1.json")

	buf.Reset()
	RenderCatalog(&buf, nil)
	assert.Contains(t, buf.String(), "no saved results")
}
