package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pdxmph/tasks/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit tasks interactively",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			p := tea.NewProgram(tui.New(store), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
