// Package index embeds text chunks and retrieves them by cosine similarity.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"ifcrag/internal/domain"
	"ifcrag/internal/embedding"
	"ifcrag/internal/vectorstore"
)

// DefaultThreshold balances recall against noise for retrieval.
const DefaultThreshold = 0.3

// Progress is called after each embedded chunk.
type Progress func(done, total int)

// Index pairs an embedding provider with a vector store. It is not safe
// for concurrent use.
type Index struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
	logger   *slog.Logger
}

// New returns an Index over store using embedder for chunks and queries.
func New(embedder embedding.Embedder, store vectorstore.Storage, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{embedder: embedder, store: store, logger: logger}
}

// Model names the embedding model used for every vector in the index.
func (x *Index) Model() string {
	if m, ok := x.embedder.(interface{ Model() string }); ok {
		return m.Model()
	}
	return x.embedder.Name()
}

// EmbedAll embeds every chunk and appends the results to the store. Repeated
// texts are stored again. Nothing is stored if any chunk fails.
func (x *Index) EmbedAll(ctx context.Context, chunks []string, progress Progress) error {
	if len(chunks) == 0 {
		return nil
	}
	n, err := x.store.Len(ctx)
	if err != nil {
		return err
	}
	// Corpus-fitted providers are prepared once, before the first vectors exist.
	if n == 0 {
		if err := x.embedder.Prepare(chunks); err != nil {
			return fmt.Errorf("prepare embedder: %w", err)
		}
	}
	entries := make([]vectorstore.Entry, len(chunks))
	for i, text := range chunks {
		vec, err := x.embed(ctx, text)
		if err != nil {
			return err
		}
		entries[i] = vectorstore.Entry{Text: text, Vector: vec}
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}
	if err := x.store.Append(ctx, entries); err != nil {
		return err
	}
	x.logger.Info("chunks embedded", "count", len(chunks), "model", x.Model())
	return nil
}

// FindSimilarByThreshold returns stored chunks scoring at least threshold
// against query, best first. The threshold is clamped to [0, 1]. An empty
// index yields an empty result without calling the provider.
func (x *Index) FindSimilarByThreshold(ctx context.Context, query string, threshold float64) ([]domain.Match, error) {
	threshold = math.Max(0, math.Min(1, threshold))
	return x.search(ctx, query, threshold)
}

// TopK returns the k best matches regardless of score.
func (x *Index) TopK(ctx context.Context, query string, k int) ([]domain.Match, error) {
	ms, err := x.search(ctx, query, math.Inf(-1))
	if err != nil {
		return nil, err
	}
	if k >= 0 && k < len(ms) {
		ms = ms[:k]
	}
	return ms, nil
}

// FindMostSimilar returns the single best match, or domain.ErrEmptyIndex.
func (x *Index) FindMostSimilar(ctx context.Context, query string) (domain.Match, error) {
	ms, err := x.TopK(ctx, query, 1)
	if err != nil {
		return domain.Match{}, err
	}
	if len(ms) == 0 {
		return domain.Match{}, domain.ErrEmptyIndex
	}
	return ms[0], nil
}

func (x *Index) search(ctx context.Context, query string, threshold float64) ([]domain.Match, error) {
	n, err := x.store.Len(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []domain.Match{}, nil
	}
	vec, err := x.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	ms, err := x.store.Threshold(ctx, vec, threshold)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []domain.Match{}
	}
	return ms, nil
}

// embed calls the provider, typing untyped failures as provider errors.
func (x *Index) embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := x.embedder.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}
	var pe *domain.EmbeddingProviderError
	var mc *domain.MissingCredentialError
	if errors.As(err, &pe) || errors.As(err, &mc) {
		return nil, err
	}
	return nil, &domain.EmbeddingProviderError{Provider: x.embedder.Name(), Op: "embed", Err: err}
}

// Len returns the number of stored chunks.
func (x *Index) Len(ctx context.Context) (int, error) { return x.store.Len(ctx) }

// Clear drops every stored chunk.
func (x *Index) Clear(ctx context.Context) error { return x.store.Clear(ctx) }

// Texts returns the stored chunks in insertion order.
func (x *Index) Texts(ctx context.Context) ([]string, error) {
	entries, err := x.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out, nil
}

// File is the saved form of an index.
type File struct {
	Embeddings [][]float64 `json:"embeddings"`
	Texts      []string    `json:"texts"`
	Model      string      `json:"model"`
}

// Save writes the stored chunks and vectors to path as JSON.
func (x *Index) Save(ctx context.Context, path string) error {
	entries, err := x.store.Entries(ctx)
	if err != nil {
		return err
	}
	f := File{Embeddings: make([][]float64, len(entries)), Texts: make([]string, len(entries)), Model: x.Model()}
	for i, e := range entries {
		f.Embeddings[i] = e.Vector
		f.Texts[i] = e.Text
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}

// ReadFile decodes a saved index.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	if len(f.Embeddings) != len(f.Texts) {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("%d embeddings for %d texts", len(f.Embeddings), len(f.Texts))}
	}
	return &f, nil
}

// Load replaces the index contents with a saved index. A model differing
// from the current provider's is logged; scores across models are not comparable.
func (x *Index) Load(ctx context.Context, path string) (*File, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if f.Model != "" && f.Model != x.Model() {
		x.logger.Warn("embedding model mismatch", "file", f.Model, "provider", x.Model())
	}
	if err := x.store.Clear(ctx); err != nil {
		return nil, err
	}
	entries := make([]vectorstore.Entry, len(f.Texts))
	for i := range f.Texts {
		entries[i] = vectorstore.Entry{Text: f.Texts[i], Vector: f.Embeddings[i]}
	}
	if err := x.store.Append(ctx, entries); err != nil {
		return nil, err
	}
	if len(f.Texts) > 0 {
		if err := x.embedder.Prepare(f.Texts); err != nil {
			return nil, fmt.Errorf("prepare embedder: %w", err)
		}
	}
	return f, nil
}
