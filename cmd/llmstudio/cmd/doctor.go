package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check agent connectivity",
	Long:  "Verify that every enabled agent backend is reachable and authenticated.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registry := buildRegistry(cfg)

	names := registry.List()
	if len(names) == 0 {
		fmt.Println("No agents enabled. Edit .llmstudio/config.yaml to enable some.")
		return nil
	}
	sort.Strings(names)

	fmt.Println("Checking agents...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := registry.PingAll(ctx)

	allOk := true
	for _, name := range names {
		if err := results[name]; err != nil {
			fmt.Printf("  ✗ %s: %v\n", name, err)
			allOk = false
		} else {
			fmt.Printf("  ✓ %s\n", name)
		}
	}

	fmt.Println()
	if !allOk {
		fmt.Println("Some agents are unreachable. Check API keys and endpoints.")
		return fmt.Errorf("agent check failed")
	}

	fmt.Println("All agents reachable")
	return nil
}
