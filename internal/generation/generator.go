// Package generation defines the chat completion boundary used to phrase answers.
package generation

import (
	"context"
	"errors"
)

// ErrNoModel is returned by Generate when the provider was built without a
// model name. Default models are chosen by the config package.
var ErrNoModel = errors.New("no model configured")

// Request is one completion call: a system instruction, a user message and
// sampling parameters. Providers ignore parameters they do not support.
type Request struct {
	System           string
	User             string
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Generator produces a text completion.
type Generator interface {
	Name() string
	// CheckCredentials reports a *domain.MissingCredentialError when no key
	// is configured. It makes no network call.
	CheckCredentials() error
	Generate(ctx context.Context, req Request) (string, error)
}

// Config is shared by the provider implementations.
type Config struct {
	APIKeyEnv  string
	Model      string
	BaseURL    string
	TimeoutSec int
	MaxRetries int
}
