// Package llm provides generation backend adapters and their registry.
package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// AgentFactory creates an agent from configuration.
type AgentFactory func(cfg AgentConfig) (core.Agent, error)

// AgentConfig configures an adapter instance.
type AgentConfig struct {
	Name        string
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Registry manages available generation agents. It is explicitly constructed
// and owned by the caller; there is no ambient global instance.
type Registry struct {
	factories map[string]AgentFactory
	agents    map[string]core.Agent
	configs   map[string]AgentConfig
	mu        sync.RWMutex
}

// NewRegistry creates a new agent registry with the built-in provider
// factories registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]AgentFactory),
		agents:    make(map[string]core.Agent),
		configs:   make(map[string]AgentConfig),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	r.RegisterFactory("anthropic", NewAnthropicAdapter)
	r.RegisterFactory("openai", NewOpenAIAdapter)
	r.RegisterFactory("gemini", NewGeminiAdapter)
	r.RegisterFactory("ollama", NewOllamaAdapter)
	r.RegisterFactory("scripted", func(cfg AgentConfig) (core.Agent, error) {
		return NewScriptedAgent(cfg.Name), nil
	})
}

// RegisterFactory registers a factory for a provider type.
func (r *Registry) RegisterFactory(provider string, factory AgentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = factory
}

// Register adds an agent directly to the registry under a participant name.
func (r *Registry) Register(name string, agent core.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = agent
	if _, ok := r.configs[name]; !ok {
		r.configs[name] = AgentConfig{Name: name}
	}
}

// Configure sets configuration for a participant name.
func (r *Registry) Configure(name string, cfg AgentConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.Name = name
	r.configs[name] = cfg
	// Clear cached agent to force re-creation
	delete(r.agents, name)
}

// Get returns an agent by participant name, creating it if necessary.
func (r *Registry) Get(name string) (core.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if agent, ok := r.agents[name]; ok {
		return agent, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, core.ErrNotFound("agent", name)
	}

	factory, ok := r.factories[cfg.Provider]
	if !ok {
		return nil, core.ErrNotFound("provider", cfg.Provider)
	}

	agent, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating agent %s: %w", name, err)
	}

	r.agents[name] = agent
	return agent, nil
}

// Has checks if a participant name is configured.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.agents[name]; ok {
		return true
	}
	_, ok := r.configs[name]
	return ok
}

// List returns names of all configured participants.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}

// Ping checks if an agent is available.
func (r *Registry) Ping(ctx context.Context, name string) error {
	agent, err := r.Get(name)
	if err != nil {
		return err
	}
	return agent.Ping(ctx)
}

// PingAll checks availability of all configured agents concurrently.
func (r *Registry) PingAll(ctx context.Context) map[string]error {
	names := r.List()

	results := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			err := r.Ping(ctx, name)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return results
}

// Available returns agents that pass Ping.
func (r *Registry) Available(ctx context.Context) []string {
	results := r.PingAll(ctx)
	available := make([]string, 0)
	for name, err := range results {
		if err == nil {
			available = append(available, name)
		}
	}
	return available
}

// Clear removes all cached agent instances, forcing re-creation on next Get.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents = make(map[string]core.Agent)
}

// Ensure Registry implements core.AgentRegistry
var _ core.AgentRegistry = (*Registry)(nil)
