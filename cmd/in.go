package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/timecalc"
)

var inCmd = &cobra.Command{
	Use:     "in",
	Aliases: []string{"start"},
	Short:   "Clock in and start a work session",
	Args:    cobra.NoArgs,
	RunE:    runIn,
}

func runIn(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ledger.ClockIn(); err != nil {
		return err
	}

	start, _ := a.ledger.StartTime()
	fmt.Fprintf(cmd.OutOrStdout(), "Clocked in at %s\n", start.Format(timecalc.ClockLayout))
	return nil
}
