package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// Explicit file that doesn't exist is an error; default search path is not.
	assert.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, []string{"claude", "chatgpt", "gemini"}, cfg.Chat.DefaultParticipants)
	assert.Equal(t, 10, cfg.Chat.HistoryWindow)

	claude, ok := cfg.Agents["claude"]
	require.True(t, ok)
	assert.Equal(t, "anthropic", claude.Provider)
	assert.True(t, claude.Enabled)

	ollama, ok := cfg.Agents["ollama"]
	require.True(t, ok)
	assert.False(t, ollama.Enabled)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
storage:
  backend: json
  path: /tmp/chat
chat:
  default_participants: [claude, gemini]
agents:
  gemini:
    provider: gemini
    model: gemini-2.5-pro
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Storage.Backend)
	assert.Equal(t, []string{"claude", "gemini"}, cfg.Chat.DefaultParticipants)
	assert.Equal(t, "gemini-2.5-pro", cfg.Agents["gemini"].Model)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"bad provider", func(c *Config) {
			c.Agents["claude"] = AgentConfig{Provider: "cohere"}
		}},
		{"unknown default participant", func(c *Config) {
			c.Chat.DefaultParticipants = []string{"mistral"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Storage: StorageConfig{Backend: "sqlite"},
				Agents: map[string]AgentConfig{
					"claude": {Provider: "anthropic"},
				},
			}
			tt.mut(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadPersonas(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := `
personas:
  - name: Johann
    participant: claude
    background: Baroque composer.
  - name: Nica
    participant: gemini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	personas, err := LoadPersonas(path)
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "Johann", personas[0].Name)
	assert.Equal(t, "claude", personas[0].Participant)

	// Missing file is not an error.
	personas, err = LoadPersonas(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, personas)

	// Entry without a participant is rejected.
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("personas:\n  - name: X\n"), 0o600))
	_, err = LoadPersonas(bad)
	assert.Error(t, err)
}
