package llm

import (
	"context"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// GeminiAdapter talks to the Gemini API through the official genai client.
type GeminiAdapter struct {
	name string
	cfg  AgentConfig
	cli  *genai.Client
}

// NewGeminiAdapter creates an adapter backed by the official genai client.
// The client reads GEMINI_API_KEY from the environment when no key is set.
func NewGeminiAdapter(cfg AgentConfig) (core.Agent, error) {
	cli, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.ErrExecution(core.CodeAgentUnavailable, "creating gemini client").WithCause(err)
	}
	return &GeminiAdapter{name: cfg.Name, cfg: cfg, cli: cli}, nil
}

func (g *GeminiAdapter) Name() string {
	return g.name
}

func (g *GeminiAdapter) Ping(ctx context.Context) error {
	opts := core.DefaultGenerateOptions()
	opts.Prompt = "ping"
	opts.MaxTokens = 1
	opts.Timeout = 15 * time.Second
	_, err := g.Generate(ctx, opts)
	return err
}

func (g *GeminiAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, core.ErrValidation(core.CodeEmptyPrompt, "prompt is empty")
	}

	model := opts.Model
	if model == "" {
		model = g.cfg.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.cfg.MaxTokens
	}

	temp := float32(opts.Temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxTokens),
	}
	if opts.SystemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemPrompt}},
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = g.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.cli.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: opts.Prompt}}}},
		genCfg,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.ErrTimeout("gemini generation timed out").WithCause(err)
		}
		return nil, core.ErrExecution(core.CodeGenerationFailed, "gemini generation failed").WithCause(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	output := strings.TrimSpace(sb.String())
	if output == "" {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "gemini returned empty content")
	}

	result := &core.GenerateResult{
		Output:   output,
		Model:    model,
		Duration: time.Since(start),
	}
	if resp.UsageMetadata != nil {
		result.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		result.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

var _ core.Agent = (*GeminiAdapter)(nil)
