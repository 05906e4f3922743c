// Package config loads the ifcrag YAML configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
	// AllowAnyModel accepts models outside the OpenAI list, e.g. for Ollama.
	AllowAnyModel bool `yaml:"allow_any_model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
// Type is "openai" or "tfidf".
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig selects the chat provider and its sampling parameters.
// Type is "openai" or "anthropic".
type GeneratorConfig struct {
	Type             string  `yaml:"type"`
	Model            string  `yaml:"model"`
	APIKeyEnv        string  `yaml:"api_key_env"`
	BaseURL          string  `yaml:"base_url,omitempty"`
	TimeoutSecs      int     `yaml:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig tunes similarity search and answer caveats.
type RetrievalConfig struct {
	Threshold     float64 `yaml:"threshold"`
	LowConfidence float64 `yaml:"low_confidence"`
}

// SerializerConfig configures text chunk generation.
type SerializerConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// ExtractionConfig configures filtered extraction.
type ExtractionConfig struct {
	IncludeProperties bool `yaml:"include_properties"`
	IncludeGeometry   bool `yaml:"include_geometry"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Serializer  SerializerConfig  `yaml:"serializer"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Log         LogConfig         `yaml:"log"`
}

// LoadEnv loads credentials from a .env file in the working directory, if present.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./ifcrag.yaml first, then ~/.config/ifcrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/ifcrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "ifcrag.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ifcrag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "openai"},
		Generator: GeneratorConfig{
			Type:             "openai",
			MaxTokens:        800,
			Temperature:      0.7,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.2,
		},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{Threshold: 0.3, LowConfidence: 0.5},
		Serializer:  SerializerConfig{BatchSize: 100},
		Extraction:  ExtractionConfig{IncludeProperties: true},
		Log:         LogConfig{Level: "info"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

// Generator models used when generator.model is unset. The provider packages
// have no defaults of their own.
const (
	DefaultOpenAIModel    = "gpt-3.5-turbo"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	g := &cfg.Generator
	if g.Type == "" {
		g.Type = "openai"
	}
	if g.Model == "" {
		switch g.Type {
		case "anthropic":
			g.Model = DefaultAnthropicModel
		default:
			g.Model = DefaultOpenAIModel
		}
	}
	if g.APIKeyEnv == "" {
		switch g.Type {
		case "anthropic":
			g.APIKeyEnv = "ANTHROPIC_API_KEY"
		default:
			g.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if g.TimeoutSecs == 0 {
		g.TimeoutSecs = 60
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 800
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "ifc_elements"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if cfg.Retrieval.Threshold < 0 || cfg.Retrieval.Threshold > 1 {
		cfg.Retrieval.Threshold = 0.3
	}
	if cfg.Retrieval.LowConfidence == 0 {
		cfg.Retrieval.LowConfidence = 0.5
	}
	if cfg.Serializer.BatchSize <= 0 {
		cfg.Serializer.BatchSize = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
