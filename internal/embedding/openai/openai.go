// Package openai implements an embedder against OpenAI-compatible
// /embeddings endpoints, including Ollama's native response shape.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"ifcrag/internal/domain"
	"ifcrag/internal/embedding"
)

const providerName = "openai"

var errNoEmbedding = errors.New("no embedding returned")

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	dimension  int
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// AllowAnyModel skips the model allow-list, for self-hosted endpoints.
	AllowAnyModel bool
	Logger        *slog.Logger
}

// NewClient creates a new embeddings client using the provided configuration.
// A missing key is reported before any request is made.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, &domain.MissingCredentialError{Provider: providerName, EnvVar: cfg.APIKeyEnv}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = embedding.DefaultModel
	}
	if !cfg.AllowAnyModel && !embedding.ValidModel(cfg.Model) {
		return nil, fmt.Errorf("openai: unsupported embedding model %q", cfg.Model)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 5
	}
	if retries < 0 {
		retries = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		timeout:    t,
		client:     &http.Client{Timeout: t},
		maxRetries: retries,
		baseDelay:  200 * time.Millisecond,
		logger:     logger,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return providerName }

// Model returns the embedding model name.
func (c *Client) Model() string { return c.model }

// Prepare is not required for remote embedding. Dimension is set on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text. Failures are
// reported as *domain.EmbeddingProviderError.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	v, err := c.embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingProviderError{Provider: providerName, Op: "embed", Err: err}
	}
	return v, nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	data, err := json.Marshal(reqBody{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				if err := c.wait(ctx, attempt, c.retryDelay(attempt), err); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			if attempt >= c.maxRetries {
				return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
			}
			// Respect Retry-After if provided
			delay := c.retryDelay(attempt)
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				delay = time.Duration(secs) * time.Second
			}
			if err := c.wait(ctx, attempt, delay, errors.New(resp.Status)); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt < c.maxRetries {
				if err := c.wait(ctx, attempt, c.retryDelay(attempt), err); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		if v := decode(payload); v != nil {
			if c.dimension == 0 {
				c.dimension = len(v)
			}
			return v, nil
		}
		// If decoding failed, and retries remain, backoff and retry
		if attempt < c.maxRetries {
			if err := c.wait(ctx, attempt, c.retryDelay(attempt), errNoEmbedding); err != nil {
				return nil, err
			}
			continue
		}
		return nil, errNoEmbedding
	}
	return nil, errNoEmbedding
}

// decode reads the OpenAI response shape, falling back to Ollama's { "embedding": [...] }.
func decode(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding
	}
	return nil
}

func (c *Client) wait(ctx context.Context, attempt int, d time.Duration, cause error) error {
	c.logger.Warn("embedding request retry", "attempt", attempt+1, "delay", d, "error", cause)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// exponential backoff capped at 5s
	d := c.baseDelay << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
