package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// SheetName is the worksheet written by XLSX exports.
const SheetName = "Time Records"

// Header holds the fixed column labels of tabular exports.
var Header = []string{"Date", "Start", "End", "Break (min)", "Duration", "Net Duration"}

// ErrNoRecords is returned when there is nothing to export.
var ErrNoRecords = errors.New("no records to export")

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, XLSX, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, xlsx or json)", s)
}

// FileName returns the default export file name for the given day,
// e.g. "time_records_2024-01-10.csv".
func FileName(f Format, day time.Time) string {
	return fmt.Sprintf("time_records_%s.%s", day.Format(timecalc.DateLayout), f)
}

// ContentType returns the MIME type of f.
func ContentType(f Format) string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

// Row is the projection of one record.
type Row struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	Start        string `json:"startTime"`
	End          string `json:"endTime"`
	BreakMinutes int    `json:"breakMinutes"`
	Duration     string `json:"duration"`
	NetDuration  string `json:"netDuration"`
}

func (r Row) cells() []string {
	return []string{r.Date, r.Start, r.End, strconv.Itoa(r.BreakMinutes), r.Duration, r.NetDuration}
}

// Rows projects records in order, filling missing breaks with defaultBreak.
func Rows(records []model.WorkRecord, defaultBreak int) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			ID:           r.ID,
			Date:         r.Date,
			Start:        r.StartTime,
			End:          r.EndTime,
			BreakMinutes: ledger.BreakMinutes(r, defaultBreak),
			Duration:     r.Duration,
			NetDuration:  ledger.NetDuration(r, defaultBreak),
		})
	}
	return rows
}

// Write exports records to w in format f.
func Write(w io.Writer, f Format, records []model.WorkRecord, defaultBreak int) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	rows := Rows(records, defaultBreak)
	switch f {
	case CSV:
		return WriteCSV(w, rows)
	case XLSX:
		return WriteXLSX(w, rows)
	case JSON:
		return WriteJSON(w, rows)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a single sheet holding the header and rows.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing xlsx header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}
		values := []interface{}{r.Date, r.Start, r.End, r.BreakMinutes, r.Duration, r.NetDuration}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing xlsx row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
