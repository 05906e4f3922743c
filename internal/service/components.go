package service

import (
	"fmt"
	"log/slog"
	"time"

	"ifcrag/internal/config"
	"ifcrag/internal/embedding"
	"ifcrag/internal/embedding/openai"
	"ifcrag/internal/embedding/tfidf"
	"ifcrag/internal/generation"
	"ifcrag/internal/generation/anthropic"
	genopenai "ifcrag/internal/generation/openai"
	"ifcrag/internal/vectorstore"
	"ifcrag/internal/vectorstore/memory"
	"ifcrag/internal/vectorstore/qdrant"
)

// Components are the pluggable providers behind a Session.
type Components struct {
	Embedder  embedding.Embedder
	Store     vectorstore.Storage
	Generator generation.Generator
}

// Assemble builds the components named by cfg.
func Assemble(cfg *config.AppConfig, logger *slog.Logger) (Components, error) {
	var c Components

	switch cfg.Embedder.Type {
	case "openai", "":
		if cfg.Embedder.OpenAI == nil {
			return c, fmt.Errorf("openai embedder config missing")
		}
		oc := cfg.Embedder.OpenAI
		client, err := openai.NewClient(openai.Config{
			BaseURL:       oc.BaseURL,
			APIKeyEnv:     oc.APIKeyEnv,
			Model:         oc.Model,
			Timeout:       time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries:    oc.MaxRetries,
			AllowAnyModel: oc.AllowAnyModel,
			Logger:        logger,
		})
		if err != nil {
			return c, err
		}
		c.Embedder = client
	case "tfidf":
		c.Embedder = tfidf.NewEmbedder()
	default:
		return c, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	switch cfg.VectorStore.Type {
	case "memory", "":
		c.Store = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return c, fmt.Errorf("qdrant config missing")
		}
		q := cfg.VectorStore.Qdrant
		c.Store = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		return c, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	g := cfg.Generator
	gcfg := generation.Config{
		APIKeyEnv:  g.APIKeyEnv,
		Model:      g.Model,
		BaseURL:    g.BaseURL,
		TimeoutSec: g.TimeoutSecs,
		MaxRetries: g.MaxRetries,
	}
	switch g.Type {
	case "openai", "":
		c.Generator = genopenai.New(gcfg)
	case "anthropic":
		c.Generator = anthropic.New(gcfg)
	default:
		return c, fmt.Errorf("unknown generator: %s", g.Type)
	}
	return c, nil
}
