package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
	version    = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nyayved",
	Short: "Nyayved legal assistant chatbot backend",
	Long: `Nyayved answers questions about Indian law through a hosted AI model and
translates text between Indian languages with the Bhashini pipeline.

Quick Start:
  nyayved serve                          # Start the HTTP API on :8000
  nyayved chats                          # List stored chats
  nyayved translate --from en --to hi "hello"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env file is fine; the environment may already be set
		_ = godotenv.Load()

		path := configPath
		if path == "" {
			path = os.Getenv("NYAYVED_CONFIG")
		}

		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
