package llm

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicAdapter talks to the Anthropic Messages API.
type AnthropicAdapter struct {
	name    string
	cfg     AgentConfig
	client  *http.Client
	baseURL string
}

// NewAnthropicAdapter creates an adapter for the Anthropic Messages API.
func NewAnthropicAdapter(cfg AgentConfig) (core.Agent, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	return &AnthropicAdapter{
		name:    cfg.Name,
		cfg:     cfg,
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (a *AnthropicAdapter) Name() string {
	return a.name
}

// Ping verifies the API key is present and the endpoint responds. A cheap
// single-token request keeps this inexpensive.
func (a *AnthropicAdapter) Ping(ctx context.Context) error {
	if a.cfg.APIKey == "" {
		return core.ErrValidation(core.CodeAgentUnavailable, "anthropic api key not configured")
	}
	opts := core.DefaultGenerateOptions()
	opts.Prompt = "ping"
	opts.MaxTokens = 1
	opts.Timeout = 15 * time.Second
	_, err := a.Generate(ctx, opts)
	return err
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	// Temperature must be omitted when thinking is enabled.
	Temperature *float64           `json:"temperature,omitempty"`
	Thinking    *anthropicThinking `json:"thinking,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *AnthropicAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, core.ErrValidation(core.CodeEmptyPrompt, "prompt is empty")
	}

	model := opts.Model
	if model == "" {
		model = a.cfg.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    opts.SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: opts.Prompt}},
	}
	if opts.ExtendedReasoning {
		reqBody.Thinking = &anthropicThinking{Type: "enabled", BudgetTokens: 8192}
		if reqBody.MaxTokens <= reqBody.Thinking.BudgetTokens {
			reqBody.MaxTokens = reqBody.Thinking.BudgetTokens * 2
		}
	} else {
		temp := opts.Temperature
		reqBody.Temperature = &temp
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = a.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	headers := map[string]string{
		"x-api-key":         a.cfg.APIKey,
		"anthropic-version": anthropicAPIVersion,
	}

	start := time.Now()
	var resp anthropicResponse
	if err := postJSON(ctx, a.client, a.baseURL+"/v1/messages", headers, reqBody, &resp); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	output := strings.TrimSpace(sb.String())
	if output == "" {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "anthropic returned no text content")
	}

	return &core.GenerateResult{
		Output:    output,
		Model:     resp.Model,
		TokensIn:  resp.Usage.InputTokens,
		TokensOut: resp.Usage.OutputTokens,
		Duration:  time.Since(start),
	}, nil
}

var _ core.Agent = (*AnthropicAdapter)(nil)
