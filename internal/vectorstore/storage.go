// Package vectorstore holds embedded chunks and answers threshold queries.
package vectorstore

import (
	"context"
	"math"
	"sort"

	"ifcrag/internal/domain"
)

// Entry is one stored chunk and its vector.
type Entry struct {
	Text   string
	Vector []float64
}

// Storage is an append-only vector store. Threshold returns matches with
// score >= threshold ordered by score descending, ties by insertion order.
type Storage interface {
	Append(ctx context.Context, entries []Entry) error
	Threshold(ctx context.Context, query []float64, threshold float64) ([]domain.Match, error)
	Entries(ctx context.Context) ([]Entry, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Cosine returns the cosine similarity of a and b. The denominator is
// guarded by 1e-8 so zero vectors score 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + 1e-8)
}

// SortMatches orders matches by score descending, then by Index ascending.
func SortMatches(ms []domain.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].SimilarityScore != ms[j].SimilarityScore {
			return ms[i].SimilarityScore > ms[j].SimilarityScore
		}
		return ms[i].Index < ms[j].Index
	})
}
