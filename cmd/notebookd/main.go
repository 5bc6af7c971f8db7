package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabroche/transcription-to-notion/internal/auth"
	"github.com/fabroche/transcription-to-notion/internal/config"
	"github.com/fabroche/transcription-to-notion/internal/envfile"
	"github.com/fabroche/transcription-to-notion/internal/httpapi"
	"github.com/fabroche/transcription-to-notion/internal/logging"
	"github.com/fabroche/transcription-to-notion/internal/mcp"
	"github.com/fabroche/transcription-to-notion/internal/notebook"
	"github.com/fabroche/transcription-to-notion/internal/transcribe"
)

const (
	startupConnectTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

var (
	configPath string
	portFlag   int
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "notebookd",
	Short: "HTTP relay over the NotebookLM tool server",
	Long: `notebookd exposes an HTTP API for submitting audio files or Drive
references together with a prompt, relays them to the NotebookLM tool
server over its stdio tool protocol, and returns transcription,
summary and notebook-query results.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to a notebookd.yaml config file")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	envResult := envfile.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if debugFlag {
		cfg.Debug = true
	}

	logger := logging.New(cfg.Debug).With("component", "notebookd")
	if envResult.Loaded {
		logger.Debug("env_loaded", "path", envResult.Path, "keys", envResult.Keys)
	}
	if envResult.Err != nil {
		logger.Warn("env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}

	client := mcp.NewClient(cfg.ServerCommand, cfg.ServerArgs, cfg.CallTimeout, logger.With("component", "mcp"))
	notebooks := notebook.NewClient(client, logger.With("component", "notebook"))
	queries := notebook.NewQueryService(notebooks, logger.With("component", "query"))
	transcriber := transcribe.NewService(notebooks, cfg.IngestionWait, logger.With("component", "transcribe"))
	authService := auth.NewService(client, logger.With("component", "auth"))
	api := httpapi.NewServer(cfg, notebooks, queries, transcriber, authService, logger.With("component", "http"))

	// Connect eagerly so misconfiguration shows up in the startup log,
	// but keep serving either way; every request reconnects lazily.
	connectCtx, cancel := context.WithTimeout(ctx, startupConnectTimeout)
	if err := client.Connect(connectCtx); err != nil {
		logger.Warn("startup_connect_failed",
			"error", err.Error(),
			"hint", "install and authenticate the tool server: uv tool install notebooklm-mcp-server && notebooklm-mcp-auth")
	}
	cancel()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.Handler(),
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "port", cfg.Port, "cors_origin", cfg.CORSOrigin)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-signalCtx.Done():
		logger.Info("shutdown_signal_received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown_incomplete", "error", err.Error())
	}
	if err := client.Disconnect(); err != nil {
		logger.Warn("disconnect_failed", "error", err.Error())
	}
	logger.Info("server_closed")
	return nil
}
