// Package export writes cause-list rows to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"causelist/internal/causelist/models"
)

// Format is an output file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding the rows in XLSX output.
const SheetName = "Cause List"

var header = []string{"Sr No", "Case Number", "Party Name", "Advocate"}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); Format(ext) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want .json, .csv or .xlsx)", filepath.Ext(path))
	}
}

// Write encodes entries to w.
func Write(w io.Writer, format Format, entries []models.CaseEntry) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatXLSX:
		return writeXLSX(w, entries)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteFile writes entries to path in the format its extension names.
func WriteFile(path string, entries []models.CaseEntry) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return Write(f, format, entries)
}

func writeJSON(w io.Writer, entries []models.CaseEntry) error {
	if entries == nil {
		entries = []models.CaseEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

func row(e models.CaseEntry) []string {
	return []string{e.SrNo, e.CaseNumber, e.PartyName, e.Advocate}
}

func writeCSV(w io.Writer, entries []models.CaseEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, entries []models.CaseEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, e := range entries {
		if err := setRow(f, i+2, row(e)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "B", "D", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx export: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
