package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kintai-rec/kintai/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all records as CSV, XLSX or JSON",
	Long: `Export all records. The file is written to export_dir (or the current
directory) as time_records_<date>.<ext> unless -o is given; -o - writes to
stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, xlsx, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, or - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return usageErrorf("%v", err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, a.ledger.Records(), a.ledger.DefaultBreakMinutes()); err != nil {
		return err
	}

	if exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path := exportOutput
	if path == "" {
		path = filepath.Join(a.cfg.ExportDir, export.FileName(format, a.ledger.Now()))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(a.ledger.Records()), path)
	return nil
}
