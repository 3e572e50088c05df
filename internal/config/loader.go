package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file (or the default search path
// when empty), applying environment overrides and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".llmstudio")
		v.AddConfigPath("$HOME/.config/llmstudio")
	}

	v.SetEnvPrefix("LLMSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetDefault("http.addr", "127.0.0.1:8420")

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", ".llmstudio/chat.db")

	v.SetDefault("chat.default_participants", []string{"claude", "chatgpt", "gemini"})
	v.SetDefault("chat.history_window", 10)

	v.SetDefault("agents.claude.provider", "anthropic")
	v.SetDefault("agents.claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("agents.claude.max_tokens", 4096)
	v.SetDefault("agents.claude.temperature", 0.7)
	v.SetDefault("agents.claude.timeout", 5*time.Minute)
	v.SetDefault("agents.claude.enabled", true)

	v.SetDefault("agents.chatgpt.provider", "openai")
	v.SetDefault("agents.chatgpt.model", "gpt-4o")
	v.SetDefault("agents.chatgpt.max_tokens", 4096)
	v.SetDefault("agents.chatgpt.temperature", 0.7)
	v.SetDefault("agents.chatgpt.timeout", 5*time.Minute)
	v.SetDefault("agents.chatgpt.enabled", true)

	v.SetDefault("agents.gemini.provider", "gemini")
	v.SetDefault("agents.gemini.model", "gemini-2.5-flash")
	v.SetDefault("agents.gemini.max_tokens", 4096)
	v.SetDefault("agents.gemini.temperature", 0.7)
	v.SetDefault("agents.gemini.timeout", 5*time.Minute)
	v.SetDefault("agents.gemini.enabled", true)

	v.SetDefault("agents.ollama.provider", "ollama")
	v.SetDefault("agents.ollama.model", "llama3.1")
	v.SetDefault("agents.ollama.base_url", "http://localhost:11434")
	v.SetDefault("agents.ollama.max_tokens", 4096)
	v.SetDefault("agents.ollama.temperature", 0.7)
	v.SetDefault("agents.ollama.timeout", 5*time.Minute)
	v.SetDefault("agents.ollama.enabled", false)
}
