package cmd

import (
	"fmt"
	"strings"

	"github.com/deepraj21/bhashabandhu-hackathon/translate"
	"github.com/spf13/cobra"
)

var (
	translateFrom string
	translateTo   string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text with the Bhashini pipeline",
	Long: `Translate text between two languages given as two-letter codes.

Example:
  nyayved translate --from en --to hi "What is bail?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := translate.New(cfg.Translation)

		translated, err := client.Translate(cmd.Context(), translateFrom, strings.Join(args, " "), translateTo)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), translated)
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVar(&translateFrom, "from", "en", "Source language code")
	translateCmd.Flags().StringVar(&translateTo, "to", "hi", "Target language code")
	rootCmd.AddCommand(translateCmd)
}
