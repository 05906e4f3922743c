// Package anthropic generates answers with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ifcrag/internal/domain"
	"ifcrag/internal/generation"
)

const (
	providerName = "anthropic"

	DefaultAPIKeyEnv = "ANTHROPIC_API_KEY"
	defaultMaxTokens = 800
)

// Generator sends one user message with a system prompt. Presence and
// frequency penalties have no Messages API equivalent and are ignored.
type Generator struct {
	client anthropic.Client
	model  string
	keyEnv string
	hasKey bool
}

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
		client: anthropic.NewClient(opts...),
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
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(maxTokens),
		System:      []anthropic.TextBlockParam{{Text: req.System}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.User))},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", &domain.EmbeddingProviderError{Provider: providerName, Op: "generate", Err: err}
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &domain.EmbeddingProviderError{Provider: providerName, Op: "generate", Err: errors.New("no text content returned")}
	}
	return b.String(), nil
}
