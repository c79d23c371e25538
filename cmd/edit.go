package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	editDate  string
	editStart string
	editEnd   string
	editBreak string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the date, times or break of a record",
	Long: `Change a work record. Fields that are not given keep their current
value; a record without its own break starts from the default break.
Times are HH:MM or HH:MM:SS; the break is a whole number of minutes.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editDate, "date", "", "Date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editStart, "start", "", "Start time")
	editCmd.Flags().StringVar(&editEnd, "end", "", "End time")
	editCmd.Flags().StringVar(&editBreak, "break", "", "Break in minutes")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, usageErrorf("invalid record id %q", s)
	}
	return id, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	in, err := a.ledger.BeginEdit(id)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("date") {
		in.Date = editDate
	}
	if flags.Changed("start") {
		in.StartTime = editStart
	}
	if flags.Changed("end") {
		in.EndTime = editEnd
	}
	if flags.Changed("break") {
		in.BreakMinutes = editBreak
	}

	if err := a.ledger.SaveEdit(in); err != nil {
		a.ledger.CancelEdit()
		return err
	}

	r, _ := a.ledger.Record(id)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated record %d: %s  %s–%s  %s (net %s)\n",
		r.ID, r.Date, r.StartTime, r.EndTime, r.Duration, a.ledger.NetDuration(r))
	return nil
}
