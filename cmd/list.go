package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work records, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listHeaderStyle = lipgloss.NewStyle().Bold(true)

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most n records (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	printList(cmd.OutOrStdout(), a.ledger, listLimit)
	return nil
}

// printList prints records newest first, followed by the total net time.
func printList(out io.Writer, l *ledger.Ledger, limit int) {
	records := l.Records()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found.")
		return
	}

	shown := make([]model.WorkRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && len(shown) == limit {
			break
		}
		shown = append(shown, records[i])
	}

	const row = "%-14s  %-10s  %-8s  %-8s  %-5s  %-8s  %s"
	fmt.Fprintln(out, listHeaderStyle.Render(
		fmt.Sprintf(row, "ID", "Date", "Start", "End", "Break", "Duration", "Net")))
	for _, r := range shown {
		fmt.Fprintf(out, row+"\n", fmt.Sprint(r.ID), r.Date, r.StartTime, r.EndTime,
			timecalc.FormatBreakTime(r.BreakMinutes), r.Duration, l.NetDuration(r))
	}
	fmt.Fprintf(out, "Total net: %s\n", l.TotalNetDuration())
}
