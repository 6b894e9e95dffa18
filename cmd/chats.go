package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/deepraj21/bhashabandhu-hackathon/blob"
	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/spf13/cobra"
)

var (
	chatsDataDir string
	chatsStorage string
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List stored chats",
	Long:  `List every chat in the configured storage backend with its title, without starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("data-dir") {
			cfg.DataDir = chatsDataDir
		}
		if flags.Changed("storage") {
			cfg.Storage.Backend = chatsStorage
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		b, err := blob.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		registry, err := store.OpenRegistry(cmd.Context(), b)
		if err != nil {
			return err
		}

		printChats(cmd.OutOrStdout(), registry.List())
		return nil
	},
}

// printChats writes one line per chat, ordered by id. Ids are time ordered,
// so the oldest chat comes first.
func printChats(out io.Writer, chats map[string]string) {
	if len(chats) == 0 {
		fmt.Fprintln(out, headerStyle.Render("No chats found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d chat(s)", len(chats))))

	ids := make([]string, 0, len(chats))
	for id := range chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, columnStyle.Render("ID")+"\t"+columnStyle.Render("Title"))
	for _, id := range ids {
		title := chats[id]
		if r := []rune(title); len(r) > 60 {
			title = string(r[:57]) + "..."
		}
		fmt.Fprintln(w, idStyle.Render(id)+"\t"+title)
	}
	w.Flush()
}

func init() {
	chatsCmd.Flags().StringVar(&chatsDataDir, "data-dir", "", "Directory holding chat data")
	chatsCmd.Flags().StringVar(&chatsStorage, "storage", "", "Storage backend: file, sqlite or cosmosdb")
	rootCmd.AddCommand(chatsCmd)
}
