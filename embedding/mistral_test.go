package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistralEmbedTexts(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody mistralEmbedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		// Entries arrive out of order to prove reassembly by index.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [
			{"index": 1, "embedding": [0.4, 0.5]},
			{"index": 0, "embedding": [0.1, 0.2]}
		]}`))
	}))
	defer server.Close()

	svc := NewMistralService(MistralConfig{APIKey: "test-key", Model: "mistral-embed", BaseURL: server.URL})

	vectors, err := svc.EmbedTexts(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "/embeddings", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "mistral-embed", gotBody.Model)
	assert.Equal(t, []string{"first", "second"}, gotBody.Input)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.4, 0.5}, vectors[1])
}

func TestMistralEmbedTextsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewMistralService(MistralConfig{APIKey: "bad-key", BaseURL: server.URL})

	_, err := svc.EmbedTexts(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestMistralEmbedTextsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.1]}]}`))
	}))
	defer server.Close()

	svc := NewMistralService(MistralConfig{APIKey: "key", BaseURL: server.URL})

	_, err := svc.EmbedTexts(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")
}

func TestMistralEmbedTextsNoInputs(t *testing.T) {
	svc := NewMistralService(MistralConfig{APIKey: "key"})

	vectors, err := svc.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestMistralEmbedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.9, 0.8]}]}`))
	}))
	defer server.Close()

	svc := NewMistralService(MistralConfig{APIKey: "key", BaseURL: server.URL})

	vector, err := svc.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.9, 0.8}, vector)
}

func TestMistralConfigDefaults(t *testing.T) {
	svc := NewMistralService(MistralConfig{APIKey: "key"})

	assert.Equal(t, "mistral-embed", svc.ModelName())
	assert.Equal(t, defaultMistralBaseURL, svc.baseURL)
}
