package rerank

import (
	"context"
	"strings"
	"unicode"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/ranking"
)

const (
	DefaultPassageTokens  = 400
	DefaultOverlapTokens  = 50
	maxPassagesPerRequest = 1000
)

// ChunkConfig bounds passage size in tokens.
type ChunkConfig struct {
	MaxTokens     int
	OverlapTokens int
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxTokens: DefaultPassageTokens, OverlapTokens: DefaultOverlapTokens}
}

// Passage is a piece of the document at Owner.
type Passage struct {
	Owner int
	Text  string
}

// RerankPassages splits long documents into sentence-aligned passages, ranks
// every passage and scores each document by its best passage. Result items
// carry the original document index and the winning passage text.
func (s *Service) RerankPassages(ctx context.Context, query string, docs []string, cfg ChunkConfig) (*Result, error) {
	if cfg.MaxTokens <= 0 {
		return nil, core.NewError(core.KindOutOfRange, "passage size must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.OverlapTokens < 0 || cfg.OverlapTokens >= cfg.MaxTokens {
		return nil, core.NewError(core.KindOutOfRange, "overlap must be within [0,%d), got %d", cfg.MaxTokens, cfg.OverlapTokens)
	}

	passages := s.chunkDocuments(docs, cfg)
	if len(passages) == 0 {
		return nil, core.NewError(core.KindEmptyInput, "documents are empty")
	}
	if len(passages) > maxPassagesPerRequest {
		return nil, core.NewError(core.KindOutOfRange, "documents split into %d passages, limit is %d", len(passages), maxPassagesPerRequest)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	res, err := s.Rerank(ctx, query, texts)
	if err != nil {
		return nil, err
	}

	best := make(map[int]core.ScoredItem)
	for _, item := range res.Results {
		if item.Index < 0 || item.Index >= len(passages) {
			continue
		}
		owner := passages[item.Index].Owner
		if cur, ok := best[owner]; !ok || item.Score > cur.Score {
			best[owner] = core.ScoredItem{Index: owner, Document: item.Document, Score: item.Score}
		}
	}

	items := make([]core.ScoredItem, 0, len(best))
	for _, item := range best {
		items = append(items, item)
	}

	res.Results = ranking.Rank(items)
	res.TotalDocuments = countNonBlank(docs)
	res.Parameters = map[string]any{
		"passage_tokens": cfg.MaxTokens,
		"overlap_tokens": cfg.OverlapTokens,
		"passages":       len(passages),
	}
	return res, nil
}

func (s *Service) chunkDocuments(docs []string, cfg ChunkConfig) []Passage {
	var out []Passage
	for i, d := range docs {
		for _, text := range chunkText(d, cfg, s.counter) {
			out = append(out, Passage{Owner: i, Text: text})
		}
	}
	return out
}

func countNonBlank(docs []string) int {
	n := 0
	for _, d := range docs {
		if strings.TrimSpace(d) != "" {
			n++
		}
	}
	return n
}

// chunkText packs sentences into passages of at most cfg.MaxTokens, carrying
// trailing sentences worth about cfg.OverlapTokens into the next passage.
// Oversized sentences are split on word boundaries.
func chunkText(text string, cfg ChunkConfig, counter TokenCounter) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if counter == nil {
		return []string{text}
	}

	var (
		chunks  []string
		current []string
		tokens  int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
	}

	sentences := splitSentences(text)
	for i, sentence := range sentences {
		n := counter.Count(sentence)

		if n > cfg.MaxTokens {
			flush()
			current, tokens = nil, 0
			chunks = append(chunks, splitWords(sentence, cfg.MaxTokens, counter)...)
			continue
		}

		if tokens+n > cfg.MaxTokens && len(current) > 0 {
			flush()
			current = overlap(sentences[:i], cfg.OverlapTokens, cfg.MaxTokens-n, counter)
			tokens = counter.Count(strings.Join(current, " "))
		}

		current = append(current, sentence)
		tokens += n
	}
	flush()
	return chunks
}

// overlap takes sentences from the end of prev until target tokens are
// reached, never exceeding room.
func overlap(prev []string, target, room int, counter TokenCounter) []string {
	var out []string
	tokens := 0
	for i := len(prev) - 1; i >= 0 && tokens < target; i-- {
		n := counter.Count(prev[i])
		if tokens+n > room {
			break
		}
		out = append([]string{prev[i]}, out...)
		tokens += n
	}
	return out
}

func splitWords(sentence string, maxTokens int, counter TokenCounter) []string {
	var (
		out     []string
		current []string
	)
	for _, w := range strings.Fields(sentence) {
		candidate := append(current, w)
		if len(current) > 0 && counter.Count(strings.Join(candidate, " ")) > maxTokens {
			out = append(out, strings.Join(current, " "))
			current = []string{w}
			continue
		}
		current = candidate
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

// splitSentences breaks on blank lines and on sentence punctuation followed
// by space, end of text or a CJK character.
func splitSentences(text string) []string {
	var sentences []string
	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)
		for i, r := range runes {
			current.WriteRune(r)
			if !sentenceEnders[r] {
				continue
			}
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) || isCJK(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		// soft wraps inside a paragraph
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
