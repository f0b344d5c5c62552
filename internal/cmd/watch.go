package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/projector/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <plan-id>",
	Short: "Watch a plan's progress live",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Fail before entering the alternate screen.
		if _, err := planStore().Get(args[0]); err != nil {
			return err
		}

		program := tea.NewProgram(
			tui.NewModel(planStore(), args[0]),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		_, err := program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
