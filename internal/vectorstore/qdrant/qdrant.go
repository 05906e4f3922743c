// Package qdrant stores chunk vectors in a Qdrant collection over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ifcrag/internal/domain"
	"ifcrag/internal/vectorstore"
)

var errNotFound = errors.New("not found")

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection on first append.
// Insertion order is kept in a "seq" payload field.
//
// A Storage owns its collection for the lifetime of a session: the first
// request it makes drops whatever a previous run left behind.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	next       int
	ready      bool
	owned      bool
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "ifc_elements"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type scoredPoint struct {
	Score   float64   `json:"score"`
	Payload payload   `json:"payload"`
	Vector  []float64 `json:"vector"`
}

type payload struct {
	Text string `json:"text"`
	Seq  int    `json:"seq"`
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

// claim drops a collection left over from an earlier session, once.
func (s *Storage) claim(ctx context.Context) error {
	if s.owned {
		return nil
	}
	if err := s.drop(ctx); err != nil {
		return err
	}
	s.owned = true
	return nil
}

func (s *Storage) drop(ctx context.Context) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if err != nil && !errors.Is(err, errNotFound) {
		return err
	}
	return nil
}

// init creates an empty collection sized for dimension.
func (s *Storage) init(ctx context.Context, dimension int) error {
	if s.ready {
		if dimension != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		return nil
	}
	if err := s.claim(ctx); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return err
	}
	s.dimension = dimension
	s.next = 0
	s.ready = true
	return nil
}

func (s *Storage) Append(ctx context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.init(ctx, len(entries[0].Vector)); err != nil {
		return err
	}
	points := make([]point, len(entries))
	for i, e := range entries {
		if len(e.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		points[i] = point{
			ID:     uuid.NewString(),
			Vector: e.Vector,
			Payload: map[string]any{
				"text": e.Text,
				"seq":  s.next + i,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return err
	}
	s.next += len(entries)
	return nil
}

func (s *Storage) Threshold(ctx context.Context, query []float64, threshold float64) ([]domain.Match, error) {
	n, err := s.Len(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	req := map[string]any{
		"vector":          query,
		"limit":           n,
		"with_payload":    true,
		"score_threshold": threshold,
	}
	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.Score < threshold {
			continue
		}
		out = append(out, domain.Match{Text: r.Payload.Text, SimilarityScore: r.Score, Index: r.Payload.Seq})
	}
	vectorstore.SortMatches(out)
	return out, nil
}

func (s *Storage) Entries(ctx context.Context) ([]vectorstore.Entry, error) {
	n, err := s.Len(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	req := map[string]any{
		"limit":        n,
		"with_payload": true,
		"with_vector":  true,
	}
	var resp struct {
		Result struct {
			Points []scoredPoint `json:"points"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/scroll", req, &resp); err != nil {
		return nil, err
	}
	out := make([]vectorstore.Entry, len(resp.Result.Points))
	seen := make([]bool, len(out))
	for _, p := range resp.Result.Points {
		if p.Payload.Seq < 0 || p.Payload.Seq >= len(out) || seen[p.Payload.Seq] {
			return nil, fmt.Errorf("qdrant: unexpected sequence %d", p.Payload.Seq)
		}
		seen[p.Payload.Seq] = true
		out[p.Payload.Seq] = vectorstore.Entry{Text: p.Payload.Text, Vector: p.Vector}
	}
	return out, nil
}

// Len counts stored points. A missing collection counts as empty.
func (s *Storage) Len(ctx context.Context) (int, error) {
	if err := s.claim(ctx); err != nil {
		return 0, err
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/count", map[string]any{"exact": true}, &resp)
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Clear drops the collection.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.drop(ctx); err != nil {
		return err
	}
	s.owned = true
	s.ready = false
	s.next = 0
	s.dimension = 0
	return nil
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s %s: %w", method, url, errNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
