// Package service holds the Session that ties the pipeline stages together
// for one conversation.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ifcrag/internal/composer"
	"ifcrag/internal/config"
	"ifcrag/internal/domain"
	"ifcrag/internal/extractor"
	"ifcrag/internal/ifc"
	"ifcrag/internal/index"
	"ifcrag/internal/loader"
	"ifcrag/internal/serializer"
)

// Answer is the outcome of one query. Err is set when the query failed; the
// failure is also recorded in the history as an error message.
type Answer struct {
	Text       string
	Candidates []domain.Match
	BestScore  float64
	Fallback   bool
	Err        error
}

// Session owns the index, chunk cache and conversation history of one user.
// It is not safe for concurrent use.
type Session struct {
	ID string

	cfg        *config.AppConfig
	logger     *slog.Logger
	loader     *loader.Loader
	cache      *serializer.Cache
	serializer *serializer.Serializer
	index      *index.Index
	composer   *composer.Composer
	dataset    *domain.ProcessedDataset
	history    []domain.Message
}

// Open assembles the configured components and returns a new session.
func Open(cfg *config.AppConfig, logger *slog.Logger) (*Session, error) {
	c, err := Assemble(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, c, logger), nil
}

// New returns a session over already built components.
func New(cfg *config.AppConfig, c Components, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("session", id)

	ld := loader.New(logger)
	ld.Options.IncludeProperties = cfg.Extraction.IncludeProperties
	ld.Options.IncludeGeometry = cfg.Extraction.IncludeGeometry

	cache := serializer.NewCache()
	opts := composer.Options{
		MaxTokens:        cfg.Generator.MaxTokens,
		Temperature:      cfg.Generator.Temperature,
		PresencePenalty:  cfg.Generator.PresencePenalty,
		FrequencyPenalty: cfg.Generator.FrequencyPenalty,
		LowConfidence:    cfg.Retrieval.LowConfidence,
	}
	return &Session{
		ID:         id,
		cfg:        cfg,
		logger:     logger,
		loader:     ld,
		cache:      cache,
		serializer: serializer.New(cache, logger),
		index:      index.New(c.Embedder, c.Store, logger),
		composer:   composer.New(c.Generator, opts, logger),
	}
}

// Load reads a model or exported dataset and makes it the current dataset.
func (s *Session) Load(ctx context.Context, src loader.Source) (*domain.ProcessedDataset, error) {
	ds, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	s.dataset = ds
	return ds, nil
}

// Dataset returns the most recently loaded dataset, or nil.
func (s *Session) Dataset() *domain.ProcessedDataset { return s.dataset }

// ExtractFiltered runs filtered extraction with the session's options.
func (s *Session) ExtractFiltered(m *ifc.Model) *extractor.Result {
	return extractor.ExtractFiltered(m, s.loader.Options)
}

// ExtractFull runs full extraction over every non-relationship entity.
func (s *Session) ExtractFull(m *ifc.Model) *extractor.Result {
	return extractor.ExtractFull(m, s.logger)
}

// ToTextChunks serializes ds with the configured batch size and the session cache.
func (s *Session) ToTextChunks(ds *domain.ProcessedDataset, useCache bool) []string {
	return s.serializer.ToTextChunks(ds, serializer.Options{
		BatchSize: s.cfg.Serializer.BatchSize,
		UseCache:  useCache,
	})
}

// EmbedAll adds chunks to the index.
func (s *Session) EmbedAll(ctx context.Context, chunks []string, progress index.Progress) error {
	return s.index.EmbedAll(ctx, chunks, progress)
}

// Ingest loads src, serializes it and embeds the chunks.
func (s *Session) Ingest(ctx context.Context, src loader.Source, progress index.Progress) (*domain.ProcessedDataset, []string, error) {
	ds, err := s.Load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	chunks := s.ToTextChunks(ds, true)
	if err := s.EmbedAll(ctx, chunks, progress); err != nil {
		return ds, chunks, err
	}
	return ds, chunks, nil
}

// Index exposes the session's embedding index.
func (s *Session) Index() *index.Index { return s.index }

// Query retrieves candidates above threshold and composes an answer. The
// question and the reply, or the error, are appended to the history. A
// missing generator credential fails before the embedding provider is called.
func (s *Session) Query(ctx context.Context, text string, threshold float64) Answer {
	s.history = append(s.history, domain.Message{Role: domain.RoleUser, Content: text})

	if err := s.composer.CheckCredentials(); err != nil {
		return s.fail(err)
	}

	matches, err := s.index.FindSimilarByThreshold(ctx, text, threshold)
	if err != nil {
		return s.fail(err)
	}
	ans, err := s.composer.Compose(ctx, text, matches)
	if err != nil {
		return s.fail(err)
	}
	s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: ans.Text})
	s.logger.Info("query answered", "candidates", len(ans.Candidates), "best_score", ans.BestScore, "fallback", ans.Fallback)
	return Answer{
		Text:       ans.Text,
		Candidates: ans.Candidates,
		BestScore:  ans.BestScore,
		Fallback:   ans.Fallback,
	}
}

func (s *Session) fail(err error) Answer {
	msg := fmt.Sprintf("Error processing query: %v", err)
	s.logger.Error("query failed", "error", err)
	s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: msg, IsError: true})
	return Answer{Text: msg, Err: err}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []domain.Message {
	out := make([]domain.Message, len(s.history))
	copy(out, s.history)
	return out
}

// ClearCache drops every cached chunk list.
func (s *Session) ClearCache() { s.serializer.ClearCache() }

// Reset empties the index, the chunk cache, the history and the current dataset.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.index.Clear(ctx); err != nil {
		return err
	}
	s.ClearCache()
	s.history = nil
	s.dataset = nil
	return nil
}
