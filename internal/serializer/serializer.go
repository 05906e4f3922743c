// Package serializer turns element records into pipe-delimited text chunks.
package serializer

import (
	"log/slog"
	"strings"

	"github.com/patrickmn/go-cache"

	"ifcrag/internal/domain"
)

// DefaultBatchSize bounds how many records are rendered per batch.
const DefaultBatchSize = 100

const (
	separator = " | "
	unknown   = "Unknown"
)

// Options control ToTextChunks.
type Options struct {
	BatchSize int
	UseCache  bool
}

// DefaultOptions uses batches of DefaultBatchSize and the cache.
func DefaultOptions() Options {
	return Options{BatchSize: DefaultBatchSize, UseCache: true}
}

// Chunk renders one record. The same record always yields the same text.
func Chunk(r domain.ElementRecord) string {
	parts := []string{
		"Element Type: " + orUnknown(r.Type),
		"ID: " + orUnknown(string(r.ID)),
		"Global ID: " + orUnknown(r.GlobalID),
	}
	if r.Name != "" {
		parts = append(parts, "Name: "+r.Name)
	}
	if r.Description != "" {
		parts = append(parts, "Description: "+r.Description)
	}
	for _, g := range r.Properties.Groups() {
		if g.IsEntry() {
			parts = append(parts, segment(g.Name, *g.Entry))
			continue
		}
		for _, p := range g.Props {
			parts = append(parts, segment(g.Name+" - "+p.Name, p.PropertyValue))
		}
	}
	return join(parts)
}

func segment(key string, v domain.PropertyValue) string {
	if !v.HasValue() {
		return ""
	}
	var b strings.Builder
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(*v.Value)
	if v.Unit != "" {
		b.WriteString(" ")
		b.WriteString(v.Unit)
	}
	if v.Type != "" {
		b.WriteString(" (Type: ")
		b.WriteString(v.Type)
		b.WriteString(")")
	}
	return b.String()
}

func join(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, separator)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// Cache keeps computed chunk sequences keyed by source file name and size.
type Cache struct {
	items *cache.Cache
}

// NewCache returns an empty cache whose entries never expire.
func NewCache() *Cache {
	return &Cache{items: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the chunks stored under key.
func (c *Cache) Get(key string) ([]string, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	chunks := v.([]string)
	return append([]string(nil), chunks...), true
}

// Set stores a copy of chunks under key.
func (c *Cache) Set(key string, chunks []string) {
	c.items.Set(key, append([]string(nil), chunks...), cache.NoExpiration)
}

// Clear drops every entry.
func (c *Cache) Clear() { c.items.Flush() }

// Len returns the number of cached datasets.
func (c *Cache) Len() int { return c.items.ItemCount() }

// Serializer renders datasets into chunks, reusing cached results.
type Serializer struct {
	cache  *Cache
	logger *slog.Logger
}

// New returns a Serializer. A nil cache gets a fresh one.
func New(c *Cache, logger *slog.Logger) *Serializer {
	if c == nil {
		c = NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{cache: c, logger: logger}
}

// ToTextChunks renders every element of ds in order, one chunk per element.
// Batch size does not change the output.
func (s *Serializer) ToTextChunks(ds *domain.ProcessedDataset, opts Options) []string {
	key := ds.CacheKey()
	if opts.UseCache {
		if chunks, ok := s.cache.Get(key); ok {
			s.logger.Debug("text chunk cache hit", "key", key, "chunks", len(chunks))
			return chunks
		}
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	chunks := make([]string, 0, len(ds.Elements))
	for start := 0; start < len(ds.Elements); start += size {
		end := min(start+size, len(ds.Elements))
		for _, el := range ds.Elements[start:end] {
			chunks = append(chunks, Chunk(el))
		}
	}
	if opts.UseCache {
		s.cache.Set(key, chunks)
	}
	return chunks
}

// ClearCache discards every cached chunk sequence.
func (s *Serializer) ClearCache() { s.cache.Clear() }
