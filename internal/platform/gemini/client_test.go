package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnloop/learnloop-api/internal/generation"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(nil, Config{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestCompleteSendsGenerateContentRequest(t *testing.T) {
	t.Parallel()

	var captured struct {
		path string
		key  string
		body generateRequest
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.key = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "{\"title\": "}, {"text": "\"Go\"}"}]}}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(nil, Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "generate a roadmap", generation.QualityFast)
	require.NoError(t, err)

	// Multi-part candidates are concatenated
	assert.Equal(t, `{"title": "Go"}`, text)

	assert.Equal(t, "/models/"+DefaultModel+":generateContent", captured.path)
	assert.Equal(t, "test-key", captured.key)
	require.Len(t, captured.body.Contents, 1)
	require.Len(t, captured.body.Contents[0].Parts, 1)
	assert.Equal(t, "generate a roadmap", captured.body.Contents[0].Parts[0].Text)
}

func TestCompleteUsesConfiguredModel(t *testing.T) {
	t.Parallel()

	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(nil, Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.0-pro",
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", generation.QualityFast)
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-pro:generateContent", path)
}

func TestCompleteNon2xxStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(nil, Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", generation.QualityFast)

	var providerErr *generation.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ProviderName, providerErr.Provider)
	assert.Equal(t, http.StatusForbidden, providerErr.StatusCode)
}

func TestCompleteNoCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client, err := NewClient(nil, Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", generation.QualityFast)

	var providerErr *generation.ProviderError
	require.ErrorAs(t, err, &providerErr)
}

func TestCompleteEmptyText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": []}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(nil, Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", generation.QualityFast)

	var providerErr *generation.ProviderError
	require.ErrorAs(t, err, &providerErr)
}

func TestCompleteEmptyPrompt(t *testing.T) {
	t.Parallel()

	client, err := NewClient(nil, Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "", generation.QualityFast)
	assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
}
