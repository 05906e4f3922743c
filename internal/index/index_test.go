package index_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifcrag/internal/domain"
	"ifcrag/internal/index"
	"ifcrag/internal/vectorstore/memory"
)

// keywordEmbedder maps texts to fixed vectors; unknown texts get the fallback.
type keywordEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
	err      error
	calls    int
	prepares int
}

func (e *keywordEmbedder) Name() string { return "keyword" }

func (e *keywordEmbedder) Prepare([]string) error {
	e.prepares++
	return nil
}

func (e *keywordEmbedder) Dimension() int { return len(e.fallback) }

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func newEmbedder() *keywordEmbedder {
	return &keywordEmbedder{
		vectors: map[string][]float64{
			"door":   {1, 0, 0},
			"door 2": {0.9, 0.1, 0},
			"wall":   {0, 1, 0},
			"mixed":  {0.5, 0.5, 0.1},
			"slab":   {0, 0, 1},
			"q-door": {1, 0, 0},
		},
		fallback: []float64{0.3, 0.3, 0.3},
	}
}

func TestEmptyIndexReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	emb := newEmbedder()
	x := index.New(emb, memory.NewStorage(), nil)

	ms, err := x.FindSimilarByThreshold(ctx, "door", 0.3)
	require.NoError(t, err)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)
	assert.Zero(t, emb.calls)

	_, err = x.FindMostSimilar(ctx, "door")
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestEmbedAllAppends(t *testing.T) {
	ctx := context.Background()
	emb := newEmbedder()
	x := index.New(emb, memory.NewStorage(), nil)

	var progress []int
	require.NoError(t, x.EmbedAll(ctx, []string{"door", "wall"}, func(done, total int) {
		assert.Equal(t, 2, total)
		progress = append(progress, done)
	}))
	require.NoError(t, x.EmbedAll(ctx, []string{"door"}, nil))

	n, err := x.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2}, progress)
	assert.Equal(t, 1, emb.prepares)

	texts, err := x.Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"door", "wall", "door"}, texts)
}

func TestFindSimilarByThreshold(t *testing.T) {
	ctx := context.Background()
	x := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"wall", "door", "mixed", "door", "door 2", "slab"}, nil))

	ms, err := x.FindSimilarByThreshold(ctx, "q-door", 0.5)
	require.NoError(t, err)
	require.Len(t, ms, 4)
	assert.Equal(t, "door", ms[0].Text)
	assert.Equal(t, 1, ms[0].Index)
	assert.Equal(t, "door", ms[1].Text)
	assert.Equal(t, 3, ms[1].Index)
	assert.Equal(t, "door 2", ms[2].Text)
	assert.Equal(t, "mixed", ms[3].Text)
	for i := 1; i < len(ms); i++ {
		assert.GreaterOrEqual(t, ms[i-1].SimilarityScore, ms[i].SimilarityScore)
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	ctx := context.Background()
	x := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"wall", "door", "mixed", "door 2", "slab", "other"}, nil))

	thresholds := []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 1}
	prev := map[int]bool(nil)
	for _, th := range thresholds {
		ms, err := x.FindSimilarByThreshold(ctx, "q-door", th)
		require.NoError(t, err)
		cur := make(map[int]bool, len(ms))
		for _, m := range ms {
			cur[m.Index] = true
			assert.GreaterOrEqual(t, m.SimilarityScore, th)
			if prev != nil {
				assert.True(t, prev[m.Index], "threshold %.1f returned index %d missing at a lower threshold", th, m.Index)
			}
		}
		prev = cur
	}
}

func TestThresholdIsClamped(t *testing.T) {
	ctx := context.Background()
	x := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"wall", "door"}, nil))

	all, err := x.FindSimilarByThreshold(ctx, "q-door", -3)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := x.FindSimilarByThreshold(ctx, "q-door", 7)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTopKAndMostSimilar(t *testing.T) {
	ctx := context.Background()
	x := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"wall", "door 2", "slab"}, nil))

	ms, err := x.TopK(ctx, "q-door", 2)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "door 2", ms[0].Text)

	best, err := x.FindMostSimilar(ctx, "q-door")
	require.NoError(t, err)
	assert.Equal(t, "door 2", best.Text)
	assert.Equal(t, 1, best.Index)
}

func TestProviderFailure(t *testing.T) {
	ctx := context.Background()
	emb := newEmbedder()
	x := index.New(emb, memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"door"}, nil))

	emb.err = errors.New("connection refused")
	_, err := x.FindSimilarByThreshold(ctx, "door", 0.3)
	var pe *domain.EmbeddingProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "keyword", pe.Provider)

	err = x.EmbedAll(ctx, []string{"wall"}, nil)
	require.ErrorAs(t, err, &pe)
	n, _ := x.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embeddings.json")
	x := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, x.EmbedAll(ctx, []string{"door", "wall"}, nil))
	require.NoError(t, x.Save(ctx, path))

	y := index.New(newEmbedder(), memory.NewStorage(), nil)
	require.NoError(t, y.EmbedAll(ctx, []string{"slab"}, nil))
	f, err := y.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "keyword", f.Model)
	assert.Equal(t, []string{"door", "wall"}, f.Texts)

	texts, err := y.Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"door", "wall"}, texts)

	best, err := y.FindMostSimilar(ctx, "q-door")
	require.NoError(t, err)
	assert.Equal(t, "door", best.Text)
}

func TestReadFileMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"embeddings":[[1]],"texts":[],"model":"x"}`), 0o644))
	_, err := index.ReadFile(path)
	var le *domain.LoadError
	assert.ErrorAs(t, err, &le)
}
