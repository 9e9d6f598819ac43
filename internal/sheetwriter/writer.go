// =============================================================================
// sheetops - Result Writer
// =============================================================================
//
// This module serializes result tables. Supported formats:
//   - xlsx:   one sheet named "ProcessedData"; cells flagged as differing
//             are filled yellow
//   - csv:    header row plus one line per row
//   - json:   an array of objects, keys in column order
//   - xml:    a <results> document with one <row> per row
//   - sqlite: a table in a SQLite database file
//
// Difference flags are passed alongside the table and only ever change how
// a cell looks. They are never written as a column.
//
// =============================================================================

package sheetwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// Formats.
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatXML    = "xml"
	FormatSQLite = "sqlite"
)

// Formats lists every output format.
var Formats = []string{FormatXLSX, FormatCSV, FormatJSON, FormatXML, FormatSQLite}

// SheetName is the worksheet name used in XLSX output.
const SheetName = "ProcessedData"

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Flagger reports whether a cell is marked as differing.
type Flagger interface {
	Flagged(row int, column string) bool
}

// defaultNames are the output base names per mode.
var defaultNames = map[string]string{
	"calculate": "date_difference_results",
	"merge":     "merged_file",
	"group":     "grouped_records",
	"compare":   "comparison_results",
}

// DefaultName returns the output base name for mode.
func DefaultName(mode string) string {
	if name, ok := defaultNames[mode]; ok {
		return name
	}
	return "results"
}

// Extension returns the file extension, without the dot, for format.
func Extension(format string) string {
	if format == FormatSQLite {
		return "db"
	}
	return format
}

// FormatFromPath derives the format from a file extension, or "" when the
// extension is not recognised.
func FormatFromPath(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "xlsx":
		return FormatXLSX
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "xml":
		return FormatXML
	case "db", "sqlite", "sqlite3":
		return FormatSQLite
	}
	return ""
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write serializes table to w in format. flags may be nil.
//
// The sqlite format needs a file and is only supported by WriteFile.
func Write(w io.Writer, format string, table types.Table, flags Flagger) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table, flags)
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	case FormatXML:
		return WriteXML(w, table, flags)
	case FormatSQLite:
		return fmt.Errorf("%w: sqlite output needs a file path", ErrUnknownFormat)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile serializes table to path, creating parent directories. name is
// the SQLite table name and is ignored by the other formats.
func WriteFile(path, format, name string, table types.Table, flags Flagger) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if format == FormatSQLite {
		return WriteSQLite(path, name, table)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(file, format, table, flags); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// cell returns the Go value written for v, or nil for Null.
func cell(v types.Value) any {
	return v.Interface()
}
