package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kintai-rec/kintai/internal/clock"
	"github.com/kintai-rec/kintai/internal/config"
	"github.com/kintai-rec/kintai/internal/export"
	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/storage"
)

// setupHome points the data directory at a temp dir and installs a manual
// clock at 2024-01-10 09:00 UTC (a Wednesday).
func setupHome(t *testing.T) (string, *clock.Manual) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvDefaultBreak, "")
	t.Setenv(config.EnvStorage, "")

	clk := clock.NewManual(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	prev := appClock
	appClock = clk
	t.Cleanup(func() { appClock = prev })
	return home, clk
}

// resetFlags restores every flag to its default; cobra keeps values and the
// Changed bit between executions in the same process.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("kintai %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// workDay records a session from 09:00 to 17:00 on the given day and
// returns the new record's id.
func workDay(t *testing.T, clk *clock.Manual, day int) int64 {
	t.Helper()
	clk.Set(time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC))
	mustRun(t, "in")
	end := time.Date(2024, 1, day, 17, 0, 0, 0, time.UTC)
	clk.Set(end)
	mustRun(t, "out")
	return end.UnixMilli()
}

func TestClockInOut(t *testing.T) {
	_, clk := setupHome(t)

	if out := mustRun(t, "in"); !strings.Contains(out, "Clocked in at 09:00:00") {
		t.Errorf("in output = %q", out)
	}

	_, err := run(t, "in")
	if !errors.Is(err, ledger.ErrInvalidState) || exitCode(err) != 1 {
		t.Errorf("second in: err = %v, exit %d", err, exitCode(err))
	}

	clk.Set(time.Date(2024, 1, 10, 12, 30, 5, 0, time.UTC))
	out := mustRun(t, "status")
	if !strings.Contains(out, "Working:") || !strings.Contains(out, "Elapsed: 03:30:05") {
		t.Errorf("status while working = %q", out)
	}

	clk.Set(time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC))
	out = mustRun(t, "out")
	if !strings.Contains(out, "Elapsed: 8h 0m 0s") || !strings.Contains(out, "08:00 (net 07:00)") {
		t.Errorf("out output = %q", out)
	}

	out = mustRun(t, "status")
	if !strings.Contains(out, "Not working.") || !strings.Contains(out, "Records: 1, total net: 7:00") {
		t.Errorf("status = %q", out)
	}

	_, err = run(t, "out")
	if !errors.Is(err, ledger.ErrInvalidState) || exitCode(err) != 1 {
		t.Errorf("out while idle: err = %v, exit %d", err, exitCode(err))
	}
}

func TestOutAcrossMidnight(t *testing.T) {
	_, clk := setupHome(t)
	clk.Set(time.Date(2024, 1, 10, 22, 0, 0, 0, time.UTC))
	mustRun(t, "in")
	clk.Set(time.Date(2024, 1, 11, 2, 0, 0, 0, time.UTC))

	out := mustRun(t, "out")
	if !strings.Contains(out, "stored as 2 records") {
		t.Errorf("out output = %q", out)
	}
}

func TestListEditDelete(t *testing.T) {
	_, clk := setupHome(t)
	id := workDay(t, clk, 10)
	idStr := strconv.FormatInt(id, 10)

	out := mustRun(t, "list")
	for _, want := range []string{idStr, "2024-01-10", "09:00:00", "17:00:00", "01:00", "08:00", "07:00", "Total net: 7:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "edit", idStr, "--start", "10:00", "--end", "12:00", "--break", "30")
	if !strings.Contains(out, "10:00:00–12:00:00  02:00 (net 01:30)") {
		t.Errorf("edit output = %q", out)
	}

	// Only --end given: the other fields keep their edited values.
	out = mustRun(t, "edit", idStr, "--end", "13:00")
	if !strings.Contains(out, "10:00:00–13:00:00  03:00 (net 02:30)") {
		t.Errorf("partial edit output = %q", out)
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"end before start", []string{"edit", idStr, "--end", "09:00"}, ledger.ErrInvalidRange},
		{"bad break", []string{"edit", idStr, "--break", "abc"}, ledger.ErrInvalidBreak},
		{"unknown id", []string{"edit", "42", "--break", "0"}, ledger.ErrNotFound},
		{"bad id", []string{"edit", "abc"}, errUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if exitCode(err) != 1 {
				t.Errorf("exit code = %d, want 1", exitCode(err))
			}
		})
	}

	if out := mustRun(t, "delete", "42"); !strings.Contains(out, "nothing deleted") {
		t.Errorf("delete absent = %q", out)
	}
	if out := mustRun(t, "delete", idStr); !strings.Contains(out, "Deleted record "+idStr) {
		t.Errorf("delete = %q", out)
	}
	if out := mustRun(t, "list"); !strings.Contains(out, "No records found.") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestListLimit(t *testing.T) {
	_, clk := setupHome(t)
	workDay(t, clk, 9)
	newest := workDay(t, clk, 10)

	out := mustRun(t, "list", "-n", "1")
	if !strings.Contains(out, strconv.FormatInt(newest, 10)) || strings.Contains(out, "2024-01-09") {
		t.Errorf("list -n 1 = %q", out)
	}
}

func TestExport(t *testing.T) {
	home, clk := setupHome(t)

	_, err := run(t, "export", "-o", "-")
	if !errors.Is(err, export.ErrNoRecords) {
		t.Errorf("empty export err = %v", err)
	}

	workDay(t, clk, 10)

	out := mustRun(t, "export", "-o", "-")
	want := "Date,Start,End,Break (min),Duration,Net Duration\n2024-01-10,09:00:00,17:00:00,60,08:00,07:00\n"
	if out != want {
		t.Errorf("csv export = %q, want %q", out, want)
	}

	path := filepath.Join(home, "out", "records.json")
	mustRun(t, "export", "--format", "json", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rows []export.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	if len(rows) != 1 || rows[0].NetDuration != "07:00" {
		t.Errorf("json rows = %+v", rows)
	}

	_, err = run(t, "export", "--format", "pdf")
	if !errors.Is(err, errUsage) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestReportWeek(t *testing.T) {
	_, clk := setupHome(t)
	workDay(t, clk, 5) // previous ISO week
	workDay(t, clk, 8)
	workDay(t, clk, 10)

	out := mustRun(t, "report")
	if !strings.Contains(out, "Week 2024-W02") {
		t.Errorf("report header = %q", out)
	}
	if strings.Contains(out, "2024-01-05") {
		t.Errorf("report includes previous week:\n%s", out)
	}
	if !strings.Contains(out, "14h 0m") {
		t.Errorf("report total:\n%s", out)
	}

	out = mustRun(t, "report", "--all", "--format", "json")
	var got struct {
		Days         []dayTotal `json:"days"`
		TotalMinutes int64      `json:"total_minutes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(got.Days) != 3 || got.TotalMinutes != 3*7*60 {
		t.Errorf("report --all = %+v", got)
	}

	if _, err := run(t, "report", "--format", "xml"); !errors.Is(err, errUsage) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestSQLiteDriver(t *testing.T) {
	home, clk := setupHome(t)
	t.Setenv(config.EnvStorage, config.DriverSQLite)

	workDay(t, clk, 10)
	if _, err := os.Stat(filepath.Join(home, "kintai.db")); err != nil {
		t.Fatalf("sqlite store not created: %v", err)
	}
	if out := mustRun(t, "status"); !strings.Contains(out, "total net: 7:00") {
		t.Errorf("status = %q", out)
	}
}

func TestCorruptStoreExitCode(t *testing.T) {
	home, _ := setupHome(t)
	if err := os.WriteFile(filepath.Join(home, "store.json"), []byte(`{"timeRecords":"not json"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "status")
	if !errors.Is(err, ledger.ErrCorruptState) {
		t.Fatalf("err = %v, want ErrCorruptState", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", exitCode(err))
	}
}

func TestUnparseableStoreKeepsFailing(t *testing.T) {
	home, _ := setupHome(t)
	path := filepath.Join(home, "store.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{{"status"}, {"status"}, {"in"}} {
		_, err := run(t, args...)
		if !errors.Is(err, storage.ErrCorrupt) || exitCode(err) != 2 {
			t.Fatalf("kintai %s: err = %v, exit %d; want ErrCorrupt, exit 2", args[0], err, exitCode(err))
		}
	}
	if data, _ := os.ReadFile(path); string(data) != "{bad json" {
		t.Errorf("store file rewritten: %q", data)
	}
}
