package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is running and the total net time",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if start, ok := a.ledger.StartTime(); ok {
		fmt.Fprintln(out, "Working:")
		fmt.Fprintf(out, "  Since: %s %s\n", start.Format(timecalc.DateLayout), start.Format(timecalc.ClockLayout))
		fmt.Fprintf(out, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(int64(a.ledger.Elapsed().Seconds())))
	} else {
		fmt.Fprintln(out, "Not working.")
	}

	fmt.Fprintf(out, "Records: %d, total net: %s\n", len(a.ledger.Records()), a.ledger.TotalNetDuration())
	return nil
}
