package cmd

import (
	"os"
	"path/filepath"

	"github.com/nickfox/LLMCreativeStudio/internal/adapters/chat"
	"github.com/nickfox/LLMCreativeStudio/internal/adapters/llm"
	"github.com/nickfox/LLMCreativeStudio/internal/config"
	"github.com/nickfox/LLMCreativeStudio/internal/conversation"
	"github.com/nickfox/LLMCreativeStudio/internal/core"
	"github.com/nickfox/LLMCreativeStudio/internal/logging"
)

// loadConfig reads the application configuration, applying command-line log
// overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	return logging.New(logCfg)
}

// buildRegistry configures an agent registry from the enabled agents.
func buildRegistry(cfg *config.Config) *llm.Registry {
	registry := llm.NewRegistry()
	for name, agent := range cfg.Agents {
		if !agent.Enabled {
			continue
		}
		registry.Configure(name, llm.AgentConfig{
			Provider:    agent.Provider,
			Model:       agent.Model,
			APIKey:      agent.APIKey,
			BaseURL:     agent.BaseURL,
			MaxTokens:   agent.MaxTokens,
			Temperature: agent.Temperature,
			Timeout:     agent.Timeout,
		})
	}
	return registry
}

// buildStore opens the configured chat store, creating the parent directory
// as needed.
func buildStore(cfg *config.Config) (core.ChatStore, error) {
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, err
		}
	}
	return chat.NewChatStore(cfg.Storage.Backend, cfg.Storage.Path)
}

// defaultParticipants filters the configured default set down to enabled
// agents.
func defaultParticipants(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Chat.DefaultParticipants))
	for _, p := range cfg.Chat.DefaultParticipants {
		if agent, ok := cfg.Agents[p]; ok && agent.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func buildHub(cfg *config.Config, registry *llm.Registry, store core.ChatStore, log *logging.Logger) *conversation.Hub {
	return conversation.NewHub(conversation.Config{
		DefaultParticipants: defaultParticipants(cfg),
		HistoryWindow:       cfg.Chat.HistoryWindow,
	}, registry, store, log)
}

// applyPersonas assigns persona presets from the configured personas file.
func applyPersonas(cfg *config.Config, m *conversation.Manager, log *logging.Logger) error {
	presets, err := config.LoadPersonas(cfg.Chat.PersonasFile)
	if err != nil {
		return err
	}
	for _, p := range presets {
		if err := m.AssignCharacter(p.Participant, p.Name, p.Background); err != nil {
			log.Warn("skipping persona preset", "persona", p.Name, "error", err)
		}
	}
	return nil
}
