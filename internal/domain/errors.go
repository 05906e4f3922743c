package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned by lookups that need at least one stored embedding.
var ErrEmptyIndex = errors.New("no embeddings generated yet")

// LoadError reports a model or dataset file that could not be opened or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ExtractionWarning describes an element or attribute that was skipped during extraction.
type ExtractionWarning struct {
	ElementID string
	Type      string
	Err       error
}

func (w *ExtractionWarning) Error() string {
	if w.ElementID == "" {
		return fmt.Sprintf("extract %s: %v", w.Type, w.Err)
	}
	return fmt.Sprintf("extract %s %s: %v", w.Type, w.ElementID, w.Err)
}

func (w *ExtractionWarning) Unwrap() error { return w.Err }

// EmbeddingProviderError wraps a failed call to an embedding or generation provider.
type EmbeddingProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

// MissingCredentialError is returned before any network call when a provider has no API key.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	if e.EnvVar == "" {
		return fmt.Sprintf("%s: API key not set", e.Provider)
	}
	return fmt.Sprintf("%s: missing API key in env %s", e.Provider, e.EnvVar)
}
