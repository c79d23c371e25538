package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live clock with clock in/out keys",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p := tea.NewProgram(tui.NewModel(a.ledger), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
