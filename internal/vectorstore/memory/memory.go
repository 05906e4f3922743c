// Package memory is an in-process brute-force vector store.
package memory

import (
	"context"
	"errors"
	"sync"

	"ifcrag/internal/domain"
	"ifcrag/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   []vectorstore.Entry
}

func NewStorage() *Storage { return &Storage{} }

// Append stores copies of the entries. All vectors must share one dimension.
func (s *Storage) Append(_ context.Context, entries []vectorstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dim := s.dimension
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return errors.New("empty vector")
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return errors.New("vector dimension mismatch")
		}
	}
	s.dimension = dim
	for _, e := range entries {
		s.entries = append(s.entries, vectorstore.Entry{
			Text:   e.Text,
			Vector: append([]float64(nil), e.Vector...),
		})
	}
	return nil
}

func (s *Storage) Threshold(_ context.Context, query []float64, threshold float64) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Match
	for i, e := range s.entries {
		score := vectorstore.Cosine(query, e.Vector)
		if score >= threshold {
			out = append(out, domain.Match{Text: e.Text, SimilarityScore: score, Index: i})
		}
	}
	vectorstore.SortMatches(out)
	return out, nil
}

func (s *Storage) Entries(_ context.Context) ([]vectorstore.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vectorstore.Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = vectorstore.Entry{Text: e.Text, Vector: append([]float64(nil), e.Vector...)}
	}
	return out, nil
}

func (s *Storage) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dimension = 0
	return nil
}
