package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
	"github.com/nickfox/LLMCreativeStudio/internal/logging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start interactive chat mode",
	Long: `Start an interactive chat session with the configured language models.

Messages go to all participants unless directed with @mentions or a
persona name. Slash commands control the session:

  /debate <topic>              Start a structured 4-round debate
  /continue                    Resume a paused debate
  /role <participant> <role>   Assign a role
  /character <participant> <name> [background...]
  /mode <open|debate|creative|research>
  /help                        Show all commands

Type 'exit' or press Ctrl-D to leave.

Example:
  llmstudio chat
  llmstudio chat --session 7f3a2b`,
	RunE: runChat,
}

var chatSession string

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session ID to create or resume")
}

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	senderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	synthesisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	roundStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func runChat(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Quiet logger for chat mode; structured output would fight the REPL.
	log := logging.New(logging.Config{
		Level:  "warn",
		Format: "text",
		Output: os.Stderr,
	})

	registry := buildRegistry(cfg)

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("opening chat store: %w", err)
	}
	defer store.Close()

	hub := buildHub(cfg, registry, store, log)
	manager := hub.Create(chatSession)
	if err := applyPersonas(cfg, manager, log); err != nil {
		return fmt.Errorf("loading personas: %w", err)
	}

	fmt.Printf("llmstudio %s  session %s\n", appVersion, manager.SessionID())
	fmt.Printf("Participants: %s\n", strings.Join(defaultParticipants(cfg), ", "))
	fmt.Println(systemStyle.Render("Type /help for commands, 'exit' to leave."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		msgs, err := manager.ProcessMessage(ctx, line, "user")
		if err != nil {
			fmt.Println(systemStyle.Render("error: " + err.Error()))
			continue
		}
		for _, msg := range msgs {
			printMessage(msg)
		}
		fmt.Println()
	}
}

// printMessage renders one conversation message for the terminal.
func printMessage(msg core.Message) {
	switch {
	case msg.IsSynthesis:
		fmt.Println(synthesisStyle.Render("── Synthesis ──"))
		fmt.Println(msg.Content)
	case msg.IsSystem:
		fmt.Println(systemStyle.Render(msg.Content))
	case msg.Sender == "user":
		// The user already typed it.
	default:
		header := senderStyle.Render(msg.DisplayName())
		if msg.Round > 0 {
			header += roundStyle.Render(fmt.Sprintf("  [round %d, speaker %d/%d]",
				msg.Round, msg.SpeakerIndex, msg.TotalSpeakers))
		}
		fmt.Println(header)
		fmt.Println(msg.Content)
	}
}
