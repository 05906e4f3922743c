// Package embedding defines the text embedding provider boundary.
package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Models accepted by the OpenAI embeddings provider.
var Models = []string{"text-embedding-3-small", "text-embedding-3-large", "text-embedding-ada-002"}

// DefaultModel is used when no model is configured.
const DefaultModel = "text-embedding-3-small"

// ValidModel reports whether name is one of Models.
func ValidModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
