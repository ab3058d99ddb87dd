package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven-pz/translationmdexe/internal/ports"
)

func TestOllamaTranslate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": `{"translation": "Hello"}`},
		})
	}))
	defer srv.Close()

	c := New("ollama", "", srv.URL, "llama3.1:8b", 5*time.Second)
	res, err := c.Translate(context.Background(), "Bonjour", ports.TranslateParams{
		SystemPrompt: "sys",
		UserPrompt:   "Bonjour",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Translation)
	assert.Equal(t, "llama3.1:8b", gotBody["model"])
	assert.Equal(t, "json", gotBody["format"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3.1:8b"}, {"name": "mistral:7b"}},
		})
	}))
	defer srv.Close()

	c := New("ollama", "", srv.URL, "", 5*time.Second)
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.1:8b", models[0].Name)
}

func TestOpenRouterTranslateSchemaFallback(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		calls++
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rf := body["response_format"].(map[string]any)
		if rf["type"] == "json_schema" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "unsupported response_format"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"translation": "Hello"}`}},
			},
		})
	}))
	defer srv.Close()

	c := New("openrouter", "test-key", srv.URL, "some/model", 5*time.Second)
	res, err := c.Translate(context.Background(), "Bonjour", ports.TranslateParams{
		SystemPrompt: "sys",
		UserPrompt:   "Bonjour",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Translation)
	assert.Equal(t, 2, calls)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("ollama", "", srv.URL, "m", time.Second)
	for i := 0; i < 5; i++ {
		_, err := c.Translate(context.Background(), "x", ports.TranslateParams{})
		require.Error(t, err)
	}
	_, err := c.Translate(context.Background(), "x", ports.TranslateParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestOpenRouterURL(t *testing.T) {
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai", "/models"))
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai/api/v1", "/models"))
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai/api/v1/", "/models"))
}
