package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifcrag/internal/domain"
	"ifcrag/internal/generation"
)

const testKeyEnv = "IFCRAG_TEST_ANTHROPIC_KEY"

func TestMissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	g := New(generation.Config{APIKeyEnv: testKeyEnv})
	var mc *domain.MissingCredentialError
	require.ErrorAs(t, g.CheckCredentials(), &mc)
	assert.Equal(t, "anthropic", mc.Provider)
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			System    []struct {
				Text string `json:"text"`
			} `json:"system"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-haiku-latest", body.Model)
		assert.Equal(t, 800, body.MaxTokens)
		require.Len(t, body.System, 1)
		assert.Equal(t, "be nice", body.System[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"I found a door."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()
	t.Setenv(testKeyEnv, "ak-test")

	g := New(generation.Config{APIKeyEnv: testKeyEnv, Model: "claude-3-5-haiku-latest", BaseURL: srv.URL + "/"})
	out, err := g.Generate(context.Background(), generation.Request{System: "be nice", User: "doors?"})
	require.NoError(t, err)
	assert.Equal(t, "I found a door.", out)
}

func TestGenerateWithoutModel(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	t.Setenv(testKeyEnv, "ak-test")

	g := New(generation.Config{APIKeyEnv: testKeyEnv, BaseURL: srv.URL + "/"})
	_, err := g.Generate(context.Background(), generation.Request{User: "doors?"})
	require.ErrorIs(t, err, generation.ErrNoModel)
	assert.False(t, called)
}
