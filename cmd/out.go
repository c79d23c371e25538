package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var outCmd = &cobra.Command{
	Use:     "out",
	Aliases: []string{"stop"},
	Short:   "Clock out and record the running session",
	Args:    cobra.NoArgs,
	RunE:    runOut,
}

func runOut(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	elapsed := int64(a.ledger.Elapsed().Seconds())
	added, err := a.ledger.ClockOut()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Clocked out. Elapsed: %s\n", formatElapsed(elapsed))
	for _, r := range added {
		fmt.Fprintf(out, "  %s  %s–%s  %s (net %s)\n",
			r.Date, r.StartTime, r.EndTime, r.Duration, a.ledger.NetDuration(r))
	}
	if len(added) > 1 {
		fmt.Fprintf(out, "Session crossed midnight; stored as %d records.\n", len(added))
	}
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
