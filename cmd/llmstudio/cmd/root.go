// Package cmd implements the llmstudio command line interface.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "llmstudio",
	Short: "Multi-LLM conversation studio with structured debates",
	Long: `llmstudio runs conversations across multiple language models at once.
Messages fan out to all participants or can be directed with @mentions,
roles, and personas. The /debate command runs a structured four-round
debate ending in a weighted consensus and a synthesized conclusion.

Running 'llmstudio' without arguments starts interactive chat mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to chat mode when no subcommand is provided
	RunE: runChat,
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .llmstudio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (auto, text, json)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}
