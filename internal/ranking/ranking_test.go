package ranking

import (
	"math/rand/v2"
	"testing"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []core.ScoredItem {
	return []core.ScoredItem{
		{Index: 0, Document: "A", Score: 0.2},
		{Index: 1, Document: "B", Score: 0.9},
		{Index: 2, Document: "C", Score: 0.9},
	}
}

func TestRank_TiesByIndex(t *testing.T) {
	items := sample()
	ranked := Rank(items)

	assert.Equal(t, []string{"B", "C", "A"}, ranked.Documents())
	// input untouched
	assert.Equal(t, sample(), items)
}

func TestByThreshold_Example(t *testing.T) {
	assert.Equal(t, []string{"B", "C"}, ByThreshold(sample(), 0.5).Documents())
	assert.Empty(t, ByThreshold(sample(), 0.95))
	assert.Len(t, ByThreshold(sample(), -1), 3)
}

func TestTopK(t *testing.T) {
	tests := []struct {
		name string
		k    int
		want []string
	}{
		{"zero", 0, []string{}},
		{"negative", -2, []string{}},
		{"one", 1, []string{"B"}},
		{"all", 3, []string{"B", "C", "A"}},
		{"more than len", 10, []string{"B", "C", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopK(sample(), tt.k).Documents())
		})
	}
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, TopK(nil, 3))
	assert.Empty(t, ByThreshold(nil, 0))
}

func randomItems(r *rand.Rand, n int) []core.ScoredItem {
	items := make([]core.ScoredItem, n)
	for i := range items {
		// coarse scores to force ties
		items[i] = core.ScoredItem{Index: i, Score: float64(r.IntN(5)) / 4}
	}
	r.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
	return items
}

func TestRank_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 200; round++ {
		items := randomItems(r, r.IntN(20))
		ranked := Rank(items)

		require.Len(t, ranked, len(items))
		for i := 1; i < len(ranked); i++ {
			prev, cur := ranked[i-1], ranked[i]
			ok := prev.Score > cur.Score || (prev.Score == cur.Score && prev.Index < cur.Index)
			require.True(t, ok, "order broken at %d: %+v then %+v", i, prev, cur)
		}
		assert.ElementsMatch(t, items, []core.ScoredItem(ranked))
		assert.Equal(t, ranked, Rank(ranked), "rank must be idempotent")

		k := r.IntN(25)
		top := TopK(items, k)
		assert.Len(t, top, min(k, len(items)))
		assert.Equal(t, ranked[:len(top)], top)

		threshold := float64(r.IntN(5)) / 4
		filtered := ByThreshold(items, threshold)
		j := 0
		for _, item := range ranked {
			if item.Score >= threshold {
				require.Less(t, j, len(filtered))
				assert.Equal(t, item, filtered[j])
				j++
			}
		}
		assert.Equal(t, j, len(filtered))
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateTopK(0))
	assert.Equal(t, core.KindOutOfRange, core.KindOf(ValidateTopK(-1)))

	assert.NoError(t, ValidateThreshold(0))
	assert.NoError(t, ValidateThreshold(1))
	assert.Equal(t, core.KindOutOfRange, core.KindOf(ValidateThreshold(1.01)))
	assert.Equal(t, core.KindOutOfRange, core.KindOf(ValidateThreshold(-0.1)))
}
