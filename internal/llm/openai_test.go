package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newOpenAICompatible("test-key", server.URL+"/v1", "gpt-4o-mini")
}

func openAIReply(content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{
				"prompt_tokens":     40,
				"completion_tokens": 25,
				"total_tokens":      65,
			},
		})
	}
}

func TestOpenAIProvider_TextCompletion(t *testing.T) {
	var got map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		openAIReply("Question: Q\nAnswer: A\nHint: H", "stop")(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a creative puzzle designer for an escape room game.",
		Messages: []Message{{Role: RoleUser, Content: "Create a puzzle."}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Question: Q\nAnswer: A\nHint: H", resp.Text())
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 25, resp.Usage.OutputTokens)
	assert.Equal(t, "end", resp.StopReason)

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Nil(t, got["response_format"])
}

func TestOpenAIProvider_StructuredReplyValidated(t *testing.T) {
	p := newTestOpenAIProvider(t, openAIReply(`{"name":"Ada"}`, "stop"))

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
		Schema:   testSchema(),
	})
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "got %T (%v)", err, err)
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	status := func(code int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "boom", "type": "server_error"},
			})
		}
	}

	_, err := newTestOpenAIProvider(t, status(http.StatusTooManyRequests)).
		Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %T (%v)", err, err)

	_, err = newTestOpenAIProvider(t, status(http.StatusBadGateway)).
		Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %T (%v)", err, err)

	_, err = newTestOpenAIProvider(t, status(http.StatusBadRequest)).
		Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var bad *ErrBadRequest
	require.True(t, errors.As(err, &bad), "got %T (%v)", err, err)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o-mini"})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-3.5"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", p.ModelID())
	assert.NotNil(t, p.Client())
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "openai/gpt-4o-mini"})
	assert.Error(t, err, "empty API key")

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-haiku-4.5"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4.5", p.ModelID(), "model IDs pass through unmapped")
}

func TestOpenRouterProvider_UsesBaseURL(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		openAIReply("Question: Q\nAnswer: A", "stop")(w, r)
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o-mini", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.True(t, hit)
}
