package llm

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

const openaiDefaultBaseURL = "https://api.openai.com"

// OpenAIAdapter talks to the OpenAI Chat Completions API.
type OpenAIAdapter struct {
	name    string
	cfg     AgentConfig
	client  *http.Client
	baseURL string
}

// NewOpenAIAdapter creates an adapter for the OpenAI Chat Completions API.
func NewOpenAIAdapter(cfg AgentConfig) (core.Agent, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	return &OpenAIAdapter{
		name:    cfg.Name,
		cfg:     cfg,
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (o *OpenAIAdapter) Name() string {
	return o.name
}

func (o *OpenAIAdapter) Ping(ctx context.Context) error {
	if o.cfg.APIKey == "" {
		return core.ErrValidation(core.CodeAgentUnavailable, "openai api key not configured")
	}
	opts := core.DefaultGenerateOptions()
	opts.Prompt = "ping"
	opts.MaxTokens = 1
	opts.Timeout = 15 * time.Second
	_, err := o.Generate(ctx, opts)
	return err
}

type openaiRequest struct {
	Model               string          `json:"model"`
	Messages            []openaiMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAIAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, core.ErrValidation(core.CodeEmptyPrompt, "prompt is empty")
	}

	model := opts.Model
	if model == "" {
		model = o.cfg.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = o.cfg.MaxTokens
	}

	messages := make([]openaiMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: opts.Prompt})

	temp := opts.Temperature
	reqBody := openaiRequest{
		Model:               model,
		Messages:            messages,
		MaxCompletionTokens: maxTokens,
		Temperature:         &temp,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = o.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.cfg.APIKey,
	}

	start := time.Now()
	var resp openaiResponse
	if err := postJSON(ctx, o.client, o.baseURL+"/v1/chat/completions", headers, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "openai returned no choices")
	}
	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "openai returned empty content")
	}

	return &core.GenerateResult{
		Output:    output,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Duration:  time.Since(start),
	}, nil
}

var _ core.Agent = (*OpenAIAdapter)(nil)
