package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/cold-message-generator/internal/credentials"
)

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeChatServer answers chat completions with reply and records each request body.
func fakeChatServer(t *testing.T, reply string) (*httptest.Server, func() []chatRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []chatRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]interface{}{{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []chatRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]chatRequest(nil), requests...)
	}
}

func TestNewClient_Providers(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, DefaultGroqConfig(), "k")
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, c.Provider())

	c, err = NewClient(ctx, DefaultOpenAIConfig(), "k")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())

	_, err = NewClient(ctx, &Config{Provider: "anthropic"}, "k")
	assert.Error(t, err)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(DefaultGroqConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	srv, requests := fakeChatServer(t, "Subject: Hello\n\nHi {recipient_name}")
	cfg := DefaultGroqConfig()
	cfg.BaseURL = srv.URL

	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)

	text, err := client.GenerateContent(context.Background(), "write it", TierAdvanced, WithTemperature(0.8))
	require.NoError(t, err)
	assert.Equal(t, "Subject: Hello\n\nHi {recipient_name}", text)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "llama-3.3-70b-versatile", reqs[0].Model)
	assert.InDelta(t, 0.8, reqs[0].Temperature, 1e-6)
	assert.Nil(t, reqs[0].ResponseFormat)
	require.Len(t, reqs[0].Messages, 1)
	assert.Equal(t, "user", reqs[0].Messages[0].Role)
	assert.Equal(t, "write it", reqs[0].Messages[0].Content)
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	srv, requests := fakeChatServer(t, "```json\n{\"github\": \"https://github.com/asha\"}\n```")
	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = srv.URL

	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)

	text, err := client.GenerateJSON(context.Background(), "classify", TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"github": "https://github.com/asha"}`, text)

	reqs := requests()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].ResponseFormat)
	assert.Equal(t, "json_object", reqs[0].ResponseFormat.Type)
	assert.InDelta(t, DefaultTemperature, reqs[0].Temperature, 1e-6)
}

func TestOpenAIClient_NoModel(t *testing.T) {
	client, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI, BaseURL: "http://127.0.0.1:0"}, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "x", TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model configured")
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	cfg := DefaultGroqConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "x", TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate content")
}

func TestResolveOptions(t *testing.T) {
	assert.InDelta(t, DefaultTemperature, ResolveOptions().Temperature, 1e-6)
	assert.InDelta(t, 1.0, ResolveOptions(WithTemperature(0.2), WithTemperature(1)).Temperature, 1e-6)
}

func TestFactory_MissingCredential(t *testing.T) {
	factory := NewFactory(DefaultGroqConfig(), credentials.NewStore(), nil)

	_, err := factory(context.Background())
	var cfgErr *credentials.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestFactory_BuildsInstrumentedClient(t *testing.T) {
	srv, requests := fakeChatServer(t, "hello")
	cfg := DefaultGroqConfig()
	cfg.BaseURL = srv.URL

	store := credentials.NewStore()
	store.Set("test-key")
	factory := NewFactory(cfg, store, zaptest.NewLogger(t))

	client, err := factory(context.Background())
	require.NoError(t, err)
	defer client.Close()

	_, ok := client.(*Instrumented)
	assert.True(t, ok)

	text, err := client.GenerateContent(context.Background(), "hi", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Len(t, requests(), 1)
}

func TestFactory_PicksUpKeyChanges(t *testing.T) {
	store := credentials.NewStore()
	factory := NewFactory(DefaultGroqConfig(), store, nil)

	_, err := factory(context.Background())
	require.Error(t, err)

	store.Set("late-key")
	client, err := factory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, client.Provider())
}
