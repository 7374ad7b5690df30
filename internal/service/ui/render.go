package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
)

const previewRunes = 120

// Preview shortens s to n runes on a single line.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// RenderRanked prints one line per item: rank, score, original index, text.
func RenderRanked(w io.Writer, title string, items core.RankedResult, total int) {
	fmt.Fprintln(w, TitleStyle.Render(title))
	if len(items) == 0 {
		fmt.Fprintln(w, DescStyle.Render("no documents matched"))
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "%2d. %s %s %s\n",
			i+1,
			ScoreStyle.Render(fmt.Sprintf("%.4f", item.Score)),
			DescStyle.Render(fmt.Sprintf("[#%d]", item.Index)),
			Preview(item.Document, previewRunes),
		)
	}
	fmt.Fprintln(w, DescStyle.Render(fmt.Sprintf("%d of %d documents", len(items), total)))
}

func RenderModeration(w io.Writer, safe bool, s parser.RiskSummary) {
	switch {
	case !safe:
		fmt.Fprintln(w, ErrorStyle.Render("UNSAFE"), "highest risk:", s.HighestLevel)
	case s.Flagged:
		fmt.Fprintln(w, WarnStyle.Render("FLAGGED"), "highest risk:", s.HighestLevel)
	default:
		fmt.Fprintln(w, ScoreStyle.Render("SAFE"))
	}
	if len(s.RiskTypes) > 0 {
		fmt.Fprintln(w, "risk types:", strings.Join(s.RiskTypes, ", "))
	}
	for _, d := range s.Details {
		fmt.Fprintf(w, "  %s %s %s\n", d.ContentType, d.Level(), DescStyle.Render(strings.Join(d.RiskTypes, ",")))
	}
}

// RenderBatch prints a summary followed by the failed items.
func RenderBatch(w io.Writer, report core.BatchReport) {
	fmt.Fprintln(w, TitleStyle.Render("BATCH"))
	fmt.Fprintf(w, "%d items, %s, %s\n",
		report.Len(),
		ScoreStyle.Render(fmt.Sprintf("%d succeeded", report.Succeeded())),
		ErrorStyle.Render(fmt.Sprintf("%d failed", report.Failed())),
	)
	for _, e := range report.Entries {
		if e.Err != nil {
			fmt.Fprintf(w, "  #%d %s %s\n", e.Index, ErrorStyle.Render(string(e.Err.Kind)), e.Err.Detail)
		}
	}
}

// SearchHit is the subset of a search result the renderer needs.
type SearchHit struct {
	Title   string
	Link    string
	Content string
}

func RenderSearch(w io.Writer, query string, hits []SearchHit) {
	fmt.Fprintln(w, TitleStyle.Render("RESULTS FOR "+strings.ToUpper(query)))
	for i, h := range hits {
		fmt.Fprintf(w, "%2d. %s\n", i+1, UsageStyle.Render(h.Title))
		if h.Link != "" {
			fmt.Fprintf(w, "    %s\n", DescStyle.Render(h.Link))
		}
		if h.Content != "" {
			fmt.Fprintf(w, "    %s\n", Preview(h.Content, previewRunes))
		}
	}
}

func RenderCatalog(w io.Writer, entries []core.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, DescStyle.Render("no saved results"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-10s %3d  %s  %s\n",
			DescStyle.Render(e.CreatedAt.Local().Format(time.DateTime)),
			e.Kind,
			e.ResultCount,
			UsageStyle.Render(e.Name),
			Preview(e.Query, 60),
		)
	}
}
