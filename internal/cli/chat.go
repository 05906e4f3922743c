package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ifcrag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [file|embeddings.json]",
	Short: "Chat about a model in the terminal UI",
	Long: `Launch an interactive conversation about a model.

Controls:
  Enter          - Ask
  ↑/↓            - Browse matched elements
  Ctrl+K/Ctrl+J  - Raise/lower the similarity threshold
  PgUp/PgDn      - Scroll
  Ctrl+C         - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	s, summary, err := prepareSession(cmd, args[0])
	if err != nil {
		return err
	}
	m := tui.New(cmd.Context(), s, summary, appConfig.Retrieval.Threshold)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
