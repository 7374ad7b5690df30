// Package ranking orders and filters scored items. Every operation is pure
// and leaves its input untouched.
package ranking

import (
	"slices"

	"github.com/sandevgo/zhipukit/internal/core"
)

// Rank sorts by descending score, breaking ties by ascending original index.
func Rank(items []core.ScoredItem) core.RankedResult {
	ranked := make(core.RankedResult, len(items))
	copy(ranked, items)
	slices.SortStableFunc(ranked, func(a, b core.ScoredItem) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Index < b.Index:
			return -1
		case a.Index > b.Index:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// TopK is the first k items of Rank. k <= 0 yields an empty result.
func TopK(items []core.ScoredItem, k int) core.RankedResult {
	if k <= 0 {
		return core.RankedResult{}
	}
	ranked := Rank(items)
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// ByThreshold keeps items of Rank with score >= t.
func ByThreshold(items []core.ScoredItem, t float64) core.RankedResult {
	ranked := Rank(items)
	out := make(core.RankedResult, 0, len(ranked))
	for _, item := range ranked {
		if item.Score >= t {
			out = append(out, item)
		}
	}
	return out
}

func ValidateTopK(k int) error {
	if k < 0 {
		return core.NewError(core.KindOutOfRange, "top_k must not be negative, got %d", k)
	}
	return nil
}

func ValidateThreshold(t float64) error {
	if t < 0 || t > 1 {
		return core.NewError(core.KindOutOfRange, "threshold must be within [0,1], got %v", t)
	}
	return nil
}
