package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

// OllamaAdapter talks to a local ollama server.
type OllamaAdapter struct {
	name    string
	cfg     AgentConfig
	client  *http.Client
	baseURL string
}

// NewOllamaAdapter creates an adapter for a local ollama server.
func NewOllamaAdapter(cfg AgentConfig) (core.Agent, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &OllamaAdapter{
		name:    cfg.Name,
		cfg:     cfg,
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (o *OllamaAdapter) Name() string {
	return o.name
}

// Ping checks the server's tag listing endpoint, which is cheap and does not
// load a model.
func (o *OllamaAdapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return &core.DomainError{
			Category:  core.ErrCatNetwork,
			Code:      core.CodeAgentUnavailable,
			Message:   "ollama server unreachable",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.ErrExecution(core.CodeAgentUnavailable, "ollama server returned "+resp.Status)
	}
	return nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	// Token counts as reported by ollama.
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

func (o *OllamaAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, core.ErrValidation(core.CodeEmptyPrompt, "prompt is empty")
	}

	model := opts.Model
	if model == "" {
		model = o.cfg.Model
	}

	messages := make([]ollamaMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: opts.Prompt})

	reqBody := ollamaRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
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

	start := time.Now()
	var resp ollamaResponse
	if err := postJSON(ctx, o.client, o.baseURL+"/api/chat", nil, reqBody, &resp); err != nil {
		return nil, err
	}

	output := strings.TrimSpace(resp.Message.Content)
	if output == "" {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "ollama returned empty content")
	}

	return &core.GenerateResult{
		Output:    output,
		Model:     resp.Model,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
		Duration:  time.Since(start),
	}, nil
}

var _ core.Agent = (*OllamaAdapter)(nil)
