package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

var (
	reportAll    bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show net working time per day",
	Long: `Show net working time per day for the current ISO week (default) or
for every recorded day with --all.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Report every recorded day instead of this week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

// dayTotal is the net time worked on one date.
type dayTotal struct {
	Date       string `json:"date"`
	Records    int    `json:"records"`
	NetMinutes int64  `json:"net_minutes"`
}

// dailyTotals sums net minutes per record date, limited to [from, to] when
// from is non-empty. Dates compare lexically as YYYY-MM-DD.
func dailyTotals(records []model.WorkRecord, defaultBreak int, from, to string) []dayTotal {
	byDate := map[string]*dayTotal{}
	for _, r := range records {
		if from != "" && (r.Date < from || r.Date > to) {
			continue
		}
		d, ok := byDate[r.Date]
		if !ok {
			d = &dayTotal{Date: r.Date}
			byDate[r.Date] = d
		}
		d.Records++
		d.NetMinutes += timecalc.NetMinutes(r.Duration, ledger.BreakMinutes(r, defaultBreak))
	}

	days := make([]dayTotal, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func runReport(cmd *cobra.Command, args []string) error {
	switch reportFormat {
	case "md", "csv", "json":
	default:
		return usageErrorf("unknown report format %q (want md, csv or json)", reportFormat)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	label := "All records"
	var from, to string
	if !reportAll {
		now := a.ledger.Now()
		mon, sun := timecalc.WeekRange(now)
		from, to = mon.Format(timecalc.DateLayout), sun.Format(timecalc.DateLayout)
		label = "Week " + timecalc.ISOWeekLabel(now)
	}

	days := dailyTotals(a.ledger.Records(), a.ledger.DefaultBreakMinutes(), from, to)
	return printReport(cmd.OutOrStdout(), reportFormat, label, days)
}

func printReport(out io.Writer, format, label string, days []dayTotal) error {
	var total int64
	for _, d := range days {
		total += d.NetMinutes
	}

	switch format {
	case "csv":
		w := csv.NewWriter(out)
		_ = w.Write([]string{"date", "records", "net_minutes"})
		for _, d := range days {
			_ = w.Write([]string{d.Date, fmt.Sprint(d.Records), fmt.Sprint(d.NetMinutes)})
		}
		w.Flush()
		return w.Error()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Label        string     `json:"label"`
			Days         []dayTotal `json:"days"`
			TotalMinutes int64      `json:"total_minutes"`
		}{label, days, total})
	default: // md
		fmt.Fprintln(out, label)
		fmt.Fprintln(out, "--------------------------------")
		for _, d := range days {
			fmt.Fprintf(out, "%-20s%s\n", d.Date, timecalc.FormatDuration(d.NetMinutes))
		}
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintf(out, "%-20s%s\n", "Total", timecalc.FormatDuration(total))
	}
	return nil
}
