// Package export serializes canonical records and dashboards to files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/leadflow/internal/model"
)

// WriteRecords writes records as CSV in the fixed export column order.
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Values()); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to dir/name, creating dir when needed, and
// returns the written path.
func WriteFile(dir, name string, records []model.Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("csv: create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if err := WriteRecords(f, records); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("csv: close %q: %w", path, err)
	}
	return path, nil
}

// BlendedFilename names a blended-data export taken at t, for example
// blended_data_2024-03-15T10-30-00.csv. The timestamp is UTC.
func BlendedFilename(t time.Time) string {
	return "blended_data_" + t.UTC().Format("2006-01-02T15-04-05") + ".csv"
}

// MonthFilename names a month drill-down export, for example
// closings_Mar_2024.csv. month is a "YYYY-MM" key.
func MonthFilename(month string, closings bool) string {
	prefix := "leads"
	if closings {
		prefix = "closings"
	}

	label := month
	if t, err := time.Parse("2006-01", month); err == nil {
		label = t.Format("Jan_2006")
	}
	return prefix + "_" + strings.ReplaceAll(label, " ", "_") + ".csv"
}
