package cmd

import (
	"testing"

	"github.com/nickfox/LLMCreativeStudio/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Chat: config.ChatConfig{
			DefaultParticipants: []string{"claude", "chatgpt", "ollama"},
		},
		Agents: map[string]config.AgentConfig{
			"claude":  {Provider: "anthropic", Enabled: true},
			"chatgpt": {Provider: "openai", Enabled: true},
			"ollama":  {Provider: "ollama", Enabled: false},
		},
	}
}

func TestBuildRegistry_SkipsDisabledAgents(t *testing.T) {
	registry := buildRegistry(testConfig())

	if !registry.Has("claude") || !registry.Has("chatgpt") {
		t.Error("enabled agents missing from registry")
	}
	if registry.Has("ollama") {
		t.Error("disabled agent should not be configured")
	}
}

func TestDefaultParticipants_FiltersToEnabled(t *testing.T) {
	got := defaultParticipants(testConfig())

	want := []string{"claude", "chatgpt"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
