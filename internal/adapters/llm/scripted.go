package llm

import (
	"context"
	"sync"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// ScriptedAgent returns canned responses in order. It backs the "scripted"
// provider used in tests and offline demos.
type ScriptedAgent struct {
	name string

	mu        sync.Mutex
	responses []string
	next      int
	respondFn func(opts core.GenerateOptions) (string, error)
	calls     []core.GenerateOptions
}

// NewScriptedAgent creates an agent that cycles through the given responses.
func NewScriptedAgent(name string, responses ...string) *ScriptedAgent {
	return &ScriptedAgent{name: name, responses: responses}
}

// SetRespondFunc installs a response function that takes precedence over the
// canned response list.
func (s *ScriptedAgent) SetRespondFunc(fn func(opts core.GenerateOptions) (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondFn = fn
}

// Calls returns a copy of all generation options seen so far.
func (s *ScriptedAgent) Calls() []core.GenerateOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.GenerateOptions, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *ScriptedAgent) Name() string {
	return s.name
}

func (s *ScriptedAgent) Ping(_ context.Context) error {
	return nil
}

func (s *ScriptedAgent) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, opts)

	if s.respondFn != nil {
		output, err := s.respondFn(opts)
		if err != nil {
			return nil, err
		}
		return &core.GenerateResult{Output: output, Model: "scripted", Duration: time.Millisecond}, nil
	}

	if len(s.responses) == 0 {
		return nil, core.ErrExecution(core.CodeGenerationFailed, "scripted agent has no responses")
	}
	output := s.responses[s.next%len(s.responses)]
	s.next++
	return &core.GenerateResult{Output: output, Model: "scripted", Duration: time.Millisecond}, nil
}

var _ core.Agent = (*ScriptedAgent)(nil)
