package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifcrag/internal/composer"
	"ifcrag/internal/config"
	"ifcrag/internal/domain"
	embedopenai "ifcrag/internal/embedding/openai"
	"ifcrag/internal/embedding/tfidf"
	"ifcrag/internal/generation"
	"ifcrag/internal/loader"
	"ifcrag/internal/logging"
	"ifcrag/internal/testutil"
	"ifcrag/internal/vectorstore"
	"ifcrag/internal/vectorstore/memory"
)

type stubGenerator struct {
	reply   string
	err     error
	credErr error
	calls   int
}

func (g *stubGenerator) Name() string            { return "stub" }
func (g *stubGenerator) CheckCredentials() error { return g.credErr }

func (g *stubGenerator) Generate(_ context.Context, _ generation.Request) (string, error) {
	g.calls++
	return g.reply, g.err
}

func newSession(t *testing.T, gen *stubGenerator) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Embedder.Type = "tfidf"
	return New(cfg, Components{
		Embedder:  tfidf.NewEmbedder(),
		Store:     memory.NewStorage(),
		Generator: gen,
	}, nil)
}

func ingestSample(t *testing.T, s *Session) []string {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "sample.ifc", testutil.SampleIFC)
	ds, chunks, err := s.Ingest(context.Background(), loader.FromPath(path), nil)
	require.NoError(t, err)
	require.NotNil(t, ds)
	require.NotEmpty(t, chunks)
	return chunks
}

func TestIngest(t *testing.T) {
	s := newSession(t, &stubGenerator{reply: "ok"})
	chunks := ingestSample(t, s)

	n, err := s.Index().Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(chunks), n)
	assert.Equal(t, len(chunks), s.Dataset().Summary.TotalElements)
	assert.NotEmpty(t, s.ID)
}

func TestQueryFiltersByRequestedType(t *testing.T) {
	gen := &stubGenerator{reply: "The door D1 is 900 mm wide."}
	s := newSession(t, gen)
	ingestSample(t, s)

	ans := s.Query(context.Background(), "What is the width of the door?", 0.05)
	require.NoError(t, ans.Err)
	require.NotEmpty(t, ans.Candidates)
	for _, m := range ans.Candidates {
		assert.Equal(t, "IfcDoor", composer.LeadingType(m.Text))
	}
	assert.Contains(t, ans.Text, "The door D1 is 900 mm wide.")
	assert.Equal(t, 1, gen.calls)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, ans.Text, history[1].Content)
	assert.False(t, history[1].IsError)
}

func TestQueryEmptyIndex(t *testing.T) {
	gen := &stubGenerator{reply: "Nothing matched."}
	s := newSession(t, gen)

	ans := s.Query(context.Background(), "any walls?", 0.3)
	require.NoError(t, ans.Err)
	assert.Empty(t, ans.Candidates)
	assert.Equal(t, 0.0, ans.BestScore)
	assert.Contains(t, ans.Text, "similarity score is 0.00")
}

func TestQueryMissingCredentialLandsInHistory(t *testing.T) {
	credErr := &domain.MissingCredentialError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}
	gen := &stubGenerator{credErr: credErr}
	s := newSession(t, gen)
	ingestSample(t, s)

	ans := s.Query(context.Background(), "walls?", 0.3)
	require.Error(t, ans.Err)
	var mc *domain.MissingCredentialError
	assert.True(t, errors.As(ans.Err, &mc))
	assert.Zero(t, gen.calls)

	history := s.History()
	require.Len(t, history, 2)
	assert.True(t, history[1].IsError)
	assert.Contains(t, history[1].Content, "Error processing query:")
}

func TestQueryMissingCredentialMakesNoEmbeddingRequest(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	t.Setenv("IFCRAG_TEST_SESSION_KEY", "sk-test")
	emb, err := embedopenai.NewClient(embedopenai.Config{BaseURL: srv.URL, APIKeyEnv: "IFCRAG_TEST_SESSION_KEY"})
	require.NoError(t, err)

	store := memory.NewStorage()
	require.NoError(t, store.Append(context.Background(), []vectorstore.Entry{
		{Text: "Element Type: IfcWall | ID: w1 | Name: W1", Vector: []float64{1, 0}},
	}))

	credErr := &domain.MissingCredentialError{Provider: "anthropic", EnvVar: "ANTHROPIC_API_KEY"}
	gen := &stubGenerator{credErr: credErr}
	s := New(config.Default(), Components{Embedder: emb, Store: store, Generator: gen}, nil)

	ans := s.Query(context.Background(), "walls?", 0.3)
	var mc *domain.MissingCredentialError
	require.ErrorAs(t, ans.Err, &mc)
	assert.Zero(t, requests.Load())
	assert.Zero(t, gen.calls)
	assert.True(t, s.History()[1].IsError)
}

func TestQueryGenerationFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	s := newSession(t, gen)
	ingestSample(t, s)

	ans := s.Query(context.Background(), "door", 0.0)
	require.NoError(t, ans.Err)
	assert.True(t, ans.Fallback)
	assert.Contains(t, ans.Text, "Error generating response: rate limited. Here's the raw data I found: Element Type: IfcDoor")
	assert.False(t, s.History()[1].IsError)
}

func TestHistoryIsACopy(t *testing.T) {
	s := newSession(t, &stubGenerator{reply: "ok"})
	s.Query(context.Background(), "hello", 0.3)

	h := s.History()
	h[0].Content = "changed"
	assert.Equal(t, "hello", s.History()[0].Content)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, &stubGenerator{reply: "ok"})
	ingestSample(t, s)
	s.Query(ctx, "walls", 0.3)

	require.NoError(t, s.Reset(ctx))
	n, err := s.Index().Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, s.History())
	assert.Nil(t, s.Dataset())
	assert.Zero(t, s.cache.Len())
}

func TestToTextChunksUsesCache(t *testing.T) {
	s := newSession(t, &stubGenerator{})
	ingestSample(t, s)
	assert.Equal(t, 1, s.cache.Len())

	s.ClearCache()
	assert.Zero(t, s.cache.Len())

	s.ToTextChunks(s.Dataset(), false)
	assert.Zero(t, s.cache.Len())
}

func TestAssemble(t *testing.T) {
	logger := logging.Discard()

	t.Run("tfidf memory anthropic", func(t *testing.T) {
		cfg := config.Default()
		cfg.Embedder.Type = "tfidf"
		cfg.Generator.Type = "anthropic"
		c, err := Assemble(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "tfidf", c.Embedder.Name())
		assert.IsType(t, &memory.Storage{}, c.Store)
		assert.Equal(t, "anthropic", c.Generator.Name())
	})

	t.Run("openai embedder without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := Assemble(config.Default(), logger)
		var mc *domain.MissingCredentialError
		assert.True(t, errors.As(err, &mc))
	})

	t.Run("unknown embedder", func(t *testing.T) {
		cfg := config.Default()
		cfg.Embedder.Type = "bm25"
		_, err := Assemble(cfg, logger)
		assert.EqualError(t, err, "unknown embedder: bm25")
	})

	t.Run("qdrant without config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Embedder.Type = "tfidf"
		cfg.VectorStore.Type = "qdrant"
		_, err := Assemble(cfg, logger)
		assert.EqualError(t, err, "qdrant config missing")
	})
}
