// Package openai generates answers with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ifcrag/internal/domain"
	"ifcrag/internal/generation"
)

const (
	providerName = "openai"

	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// Generator calls chat completions with a single system and user message.
type Generator struct {
	client openai.Client
	model  string
	keyEnv string
	hasKey bool
}

// New builds a generator. A missing key is reported by CheckCredentials and
// Generate, never by a request.
func New(cfg generation.Config) *Generator {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	key := os.Getenv(cfg.APIKeyEnv)
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSec > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSec)*time.Second))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return &Generator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		keyEnv: cfg.APIKeyEnv,
		hasKey: key != "",
	}
}

func (g *Generator) Name() string { return providerName }

func (g *Generator) CheckCredentials() error {
	if !g.hasKey {
		return &domain.MissingCredentialError{Provider: providerName, EnvVar: g.keyEnv}
	}
	return nil
}

func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	if err := g.CheckCredentials(); err != nil {
		return "", err
	}
	if g.model == "" {
		return "", fmt.Errorf("%s: %w", providerName, generation.ErrNoModel)
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature:      openai.Float(req.Temperature),
		PresencePenalty:  openai.Float(req.PresencePenalty),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &domain.EmbeddingProviderError{Provider: providerName, Op: "generate", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.EmbeddingProviderError{Provider: providerName, Op: "generate", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
