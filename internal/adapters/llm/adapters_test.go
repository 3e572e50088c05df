package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

func TestAnthropicAdapter_Generate(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-sonnet-4-20250514",
			"content": []map[string]any{
				{"type": "text", "text": "Hello from Claude."},
			},
			"usage": map[string]int{"input_tokens": 12, "output_tokens": 8},
		})
	}))
	defer srv.Close()

	agent, err := NewAnthropicAdapter(AgentConfig{
		Name:    "claude",
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "claude-sonnet-4-20250514",
	})
	require.NoError(t, err)

	opts := core.DefaultGenerateOptions()
	opts.Prompt = "say hello"
	opts.SystemPrompt = "be brief"

	result, err := agent.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Hello from Claude.", result.Output)
	assert.Equal(t, 12, result.TokensIn)
	assert.Equal(t, 8, result.TokensOut)
	assert.Equal(t, "be brief", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicAdapter_ExtendedReasoning(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "deep thought"}},
		})
	}))
	defer srv.Close()

	agent, err := NewAnthropicAdapter(AgentConfig{Name: "claude", APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	opts := core.DefaultGenerateOptions()
	opts.Prompt = "synthesize"
	opts.ExtendedReasoning = true

	_, err = agent.Generate(context.Background(), opts)
	require.NoError(t, err)

	require.NotNil(t, gotReq.Thinking)
	assert.Equal(t, "enabled", gotReq.Thinking.Type)
	assert.Nil(t, gotReq.Temperature, "temperature must be omitted with thinking enabled")
	assert.Greater(t, gotReq.MaxTokens, gotReq.Thinking.BudgetTokens)
}

func TestAnthropicAdapter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	agent, err := NewAnthropicAdapter(AgentConfig{Name: "claude", APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	opts := core.DefaultGenerateOptions()
	opts.Prompt = "hello"

	_, err = agent.Generate(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, core.IsRetryable(err))
}

func TestOpenAIAdapter_Generate(t *testing.T) {
	var gotReq openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Hello from ChatGPT."}},
			},
			"usage": map[string]int{"prompt_tokens": 9, "completion_tokens": 5},
		})
	}))
	defer srv.Close()

	agent, err := NewOpenAIAdapter(AgentConfig{Name: "chatgpt", APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o"})
	require.NoError(t, err)

	opts := core.DefaultGenerateOptions()
	opts.Prompt = "say hello"
	opts.SystemPrompt = "be brief"

	result, err := agent.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Hello from ChatGPT.", result.Output)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestOllamaAdapter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/chat":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"model":             "llama3.1",
				"message":           map[string]string{"role": "assistant", "content": "local hello"},
				"prompt_eval_count": 4,
				"eval_count":        2,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	agent, err := NewOllamaAdapter(AgentConfig{Name: "ollama", BaseURL: srv.URL, Model: "llama3.1"})
	require.NoError(t, err)

	require.NoError(t, agent.Ping(context.Background()))

	opts := core.DefaultGenerateOptions()
	opts.Prompt = "hello"

	result, err := agent.Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "local hello", result.Output)
	assert.Equal(t, 4, result.TokensIn)
}

func TestEmptyPromptRejected(t *testing.T) {
	agent, err := NewAnthropicAdapter(AgentConfig{Name: "claude", APIKey: "k", Model: "m"})
	require.NoError(t, err)

	_, err = agent.Generate(context.Background(), core.GenerateOptions{Prompt: "   "})
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}

func TestRegistry_GetCreatesAndCaches(t *testing.T) {
	r := NewRegistry()
	r.Configure("claude", AgentConfig{
		Provider: "scripted",
		Timeout:  time.Second,
	})

	agent1, err := r.Get("claude")
	require.NoError(t, err)
	agent2, err := r.Get("claude")
	require.NoError(t, err)
	assert.Same(t, agent1, agent2)

	assert.True(t, r.Has("claude"))
	assert.False(t, r.Has("mistral"))

	_, err = r.Get("mistral")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))
}

func TestRegistry_UnknownProvider(t *testing.T) {
	r := NewRegistry()
	r.Configure("weird", AgentConfig{Provider: "carrier-pigeon"})

	_, err := r.Get("weird")
	require.Error(t, err)
}

func TestScriptedAgent_CyclesResponses(t *testing.T) {
	agent := NewScriptedAgent("claude", "one", "two")

	for _, want := range []string{"one", "two", "one"} {
		result, err := agent.Generate(context.Background(), core.GenerateOptions{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, want, result.Output)
	}
	assert.Len(t, agent.Calls(), 3)
}
