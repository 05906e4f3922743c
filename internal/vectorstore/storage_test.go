package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ifcrag/internal/domain"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}

func TestSortMatchesBreaksTiesByIndex(t *testing.T) {
	ms := []domain.Match{
		{Text: "c", SimilarityScore: 0.5, Index: 2},
		{Text: "a", SimilarityScore: 0.9, Index: 3},
		{Text: "b", SimilarityScore: 0.5, Index: 1},
	}
	SortMatches(ms)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ms[0].Text, ms[1].Text, ms[2].Text})
}
