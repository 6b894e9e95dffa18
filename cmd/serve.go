package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepraj21/bhashabandhu-hackathon/blob"
	"github.com/deepraj21/bhashabandhu-hackathon/chat"
	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/deepraj21/bhashabandhu-hackathon/llm"
	"github.com/deepraj21/bhashabandhu-hackathon/server"
	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/deepraj21/bhashabandhu-hackathon/translate"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr    string
	serveDataDir string
	serveStorage string
)

// newProvider is replaced in tests.
var newProvider = func(ctx context.Context, cfg config.LLMConfig) (chat.Provider, error) {
	p, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the Nyayved HTTP API.

Chats are kept in the configured storage backend (file, sqlite or cosmosdb).
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.Addr = serveAddr
		}
		if flags.Changed("data-dir") {
			cfg.DataDir = serveDataDir
		}
		if flags.Changed("storage") {
			cfg.Storage.Backend = serveStorage
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
		}

		return runServer(ctx, cfg, ln)
	},
}

// newApp wires storage, the AI provider and the translator into the HTTP app.
// The returned blob store must be closed by the caller.
func newApp(ctx context.Context, cfg *config.Config) (*server.App, blob.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := newProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, err
	}

	b, err := blob.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	registry, err := store.OpenRegistry(ctx, b)
	if err != nil {
		b.Close()
		return nil, nil, err
	}

	logger := slog.Default()
	service := chat.NewService(registry, store.NewHistory(b), provider, chat.WithLogger(logger))
	translator := translate.New(cfg.Translation)

	return server.New(registry, service, translator, logger), b, nil
}

// runServer serves on ln until ctx is cancelled, then shuts down.
func runServer(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	app, b, err := newApp(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer b.Close()

	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", ln.Addr().String(),
			"storage", cfg.Storage.Backend,
			"dataDir", cfg.DataDir,
			"llm", cfg.LLM.Provider)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddr, "Address to listen on")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", config.DefaultDataDir, "Directory for chat data (created if absent)")
	serveCmd.Flags().StringVar(&serveStorage, "storage", config.BackendFile, "Storage backend: file, sqlite or cosmosdb")
	rootCmd.AddCommand(serveCmd)
}

