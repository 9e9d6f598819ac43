package sheetwriter

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// DiffFillColor is the fill applied to differing cells.
const DiffFillColor = "FEF08A"

// WriteXLSX writes table as a workbook with one sheet named SheetName.
// Cells for which flags reports true are filled with DiffFillColor.
func WriteXLSX(w io.Writer, table types.Table, flags Flagger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	diffStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{DiffFillColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create diff style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	columns := table.Columns()

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]any, len(columns))
		for j, c := range columns {
			cell := excelize.Cell{Value: xlsxValue(row.Value(c))}
			if flags != nil && flags.Flagged(i, c) {
				cell.StyleID = diffStyle
			}
			values[j] = cell
		}

		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// xlsxValue maps a value to what excelize stores. Non-finite numbers are
// written as text.
func xlsxValue(v types.Value) any {
	if n, ok := v.Float(); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return v.String()
	}
	return cell(v)
}
