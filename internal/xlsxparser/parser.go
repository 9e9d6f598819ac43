// =============================================================================
// sheetops - XLSX Reader
// =============================================================================
//
// This module decodes one worksheet of an XLSX workbook into a Table. The
// first row is the header; every following row becomes a Row keyed by it.
//
// SHEET LAYOUT:
//
//   | id | name  | hired      | left       |
//   |----|-------|------------|------------|
//   | 1  | Sara  | 1399/02/15 | 2023-01-31 |
//   | 2  | Reza  | 1400/11/01 |            |
//
// CELL TYPES:
//   - Boolean cells become Bool values
//   - Numeric and date cells become Number values (dates as serials)
//   - Everything else is kept as text
//   - Empty cells are left out of the row
//
// ERRORS:
//   - ErrUnreadable: the file cannot be opened or decoded
//   - ErrEmptySheet: the sheet has no data rows
//   - ErrSheetNotFound: a named sheet does not exist
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheetops/internal/types"
)

var (
	// ErrUnreadable is returned when the workbook cannot be opened.
	ErrUnreadable = errors.New("unreadable workbook")

	// ErrEmptySheet is returned when the sheet has no data rows.
	ErrEmptySheet = errors.New("sheet is empty")

	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Options selects what to read.
type Options struct {
	// Sheet is the worksheet name. Default: the first sheet.
	Sheet string
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadFile reads a worksheet of the workbook at path.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - opts: Which sheet to read.
//
// RETURNS:
//   - The decoded table, with the header row as Table.Header.
//   - An error wrapping ErrUnreadable, ErrEmptySheet or ErrSheetNotFound.
func ReadFile(path string, opts Options) (types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	return read(f, opts)
}

// Read reads a worksheet from an XLSX stream.
func Read(r io.Reader, opts Options) (types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return types.Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	return read(f, opts)
}

// SheetNames lists the worksheets of the workbook at path.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func read(f *excelize.File, opts Options) (types.Table, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return types.Table{}, fmt.Errorf("%w: workbook has no sheets", ErrEmptySheet)
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return types.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Table{}, fmt.Errorf("%w: failed to read rows of %q: %v", ErrUnreadable, sheet, err)
	}
	if len(rows) < 2 {
		return types.Table{}, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	headers := cleanHeaders(rows[0], width)

	table := types.Table{Header: headers}
	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}

		var row types.Row
		for col, raw := range rows[i] {
			if raw == "" {
				continue
			}
			value, err := cellValue(f, sheet, col+1, i+1, raw)
			if err != nil {
				return types.Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
			}
			row.Set(headers[col], value)
		}
		table.Rows = append(table.Rows, row)
	}

	if table.IsEmpty() {
		return types.Table{}, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}
	return table, nil
}

// cellValue types a raw cell using the cell's stored type.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (types.Value, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return types.Value{}, err
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return types.Value{}, fmt.Errorf("cell %s: %w", cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return types.Number(n), nil
		}
	}
	return types.String(raw), nil
}

// cleanHeaders trims header names, fills blanks with Column_N and suffixes
// repeated names with _1, _2, ... so every column has a unique key.
func cleanHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool, width)
	count := make(map[string]int, width)

	for i := range headers {
		header := ""
		if i < len(raw) {
			header = strings.TrimSpace(raw[i])
		}
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		name := header
		for used[name] {
			count[header]++
			name = fmt.Sprintf("%s_%d", header, count[header])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
