// Package config loads application configuration from .llmstudio/config.yaml,
// environment variables (LLMSTUDIO_*), and defaults.
package config

import (
	"fmt"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// Config is the top-level application configuration.
type Config struct {
	Log     LogConfig              `mapstructure:"log"`
	HTTP    HTTPConfig             `mapstructure:"http"`
	Storage StorageConfig          `mapstructure:"storage"`
	Chat    ChatConfig             `mapstructure:"chat"`
	Agents  map[string]AgentConfig `mapstructure:"agents"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig configures chat persistence.
type StorageConfig struct {
	// Backend is "sqlite" or "json".
	Backend string `mapstructure:"backend"`
	// Path is the database file (sqlite) or base directory (json).
	Path string `mapstructure:"path"`
}

// ChatConfig configures conversation behavior.
type ChatConfig struct {
	// DefaultParticipants respond when no roles are assigned and no
	// target is addressed.
	DefaultParticipants []string `mapstructure:"default_participants"`
	// PersonasFile optionally points at a YAML file of persona presets
	// loaded at startup.
	PersonasFile string `mapstructure:"personas_file"`
	// HistoryWindow is how many recent messages are folded into ordinary
	// generation prompts.
	HistoryWindow int `mapstructure:"history_window"`
}

// AgentConfig configures a single generation backend.
type AgentConfig struct {
	// Provider selects the adapter implementation: "anthropic", "openai",
	// "gemini", or "ollama".
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Enabled     bool          `mapstructure:"enabled"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "sqlite", "json":
	default:
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q (valid: sqlite, json)", c.Storage.Backend))
	}

	for name, agent := range c.Agents {
		switch agent.Provider {
		case "anthropic", "openai", "gemini", "ollama", "scripted":
		default:
			return core.ErrValidation(core.CodeInvalidConfig,
				fmt.Sprintf("agent %q: unknown provider %q", name, agent.Provider))
		}
		if agent.Timeout < 0 {
			return core.ErrValidation(core.CodeInvalidConfig,
				fmt.Sprintf("agent %q: negative timeout", name))
		}
	}

	for _, p := range c.Chat.DefaultParticipants {
		if _, ok := c.Agents[p]; !ok {
			return core.ErrValidation(core.CodeInvalidConfig,
				fmt.Sprintf("default participant %q has no agent configuration", p))
		}
	}

	return nil
}
