package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nickfox/LLMCreativeStudio/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the REST API server used by frontend clients.

The server exposes session management, message processing, and debate
control under /api/v1. The listen address comes from http.addr in the
configuration (default 127.0.0.1:8420) unless overridden with --addr.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := newLogger(cfg)
	registry := buildRegistry(cfg)

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("opening chat store: %w", err)
	}
	defer store.Close()

	hub := buildHub(cfg, registry, store, log)
	server := api.NewServer(hub, store, api.WithLogger(log))

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	err = server.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
