// =============================================================================
// sheetops - CSV Reader
// =============================================================================
//
// This module decodes CSV files into Tables. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers
//   - Custom data start rows
//   - Legacy encodings (windows-1256, iso-8859-1, ...)
//
// Every cell is read as text, trimmed. Empty cells are left out of the row
// and fully empty lines are skipped, matching the XLSX reader.
//
// ERRORS:
//   - ErrUnreadable: the file cannot be opened or is not valid CSV
//   - ErrEmptyFile: the file has no data rows
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/types"
)

var (
	// ErrUnreadable is returned when the file cannot be read as CSV.
	ErrUnreadable = errors.New("unreadable csv")

	// ErrEmptyFile is returned when the file has no data rows.
	ErrEmptyFile = errors.New("csv file is empty")
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile reads a CSV file into a table.
//
// PARAMETERS:
//   - path: The path to the CSV file.
//   - settings: Delimiter, header and encoding settings.
//
// RETURNS:
//   - The decoded table, with the merged header as Table.Header.
//   - An error wrapping ErrUnreadable or ErrEmptyFile.
func ReadFile(path string, settings config.CSVSettings) (types.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer file.Close()

	table, err := Read(file, settings)
	if err != nil {
		return types.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Read reads CSV data from r into a table.
func Read(r io.Reader, settings config.CSVSettings) (types.Table, error) {
	parser, err := NewStreamingParser(r, settings)
	if err != nil {
		return types.Table{}, err
	}

	var table types.Table
	for parser.Next() {
		table.Rows = append(table.Rows, parser.Row())
	}
	if err := parser.Err(); err != nil {
		return types.Table{}, err
	}
	table.Header = parser.Headers()

	if table.IsEmpty() {
		return types.Table{}, ErrEmptyFile
	}
	return table, nil
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads rows one at a time.
//
// USAGE:
//
//	parser, err := NewStreamingParser(r, settings)
//	if err != nil {
//	    return err
//	}
//
//	for parser.Next() {
//	    row := parser.Row()
//	    // Process the row...
//	}
//
//	if err := parser.Err(); err != nil {
//	    return err
//	}
type StreamingParser struct {
	reader     *csv.Reader
	headers    []string
	currentRow types.Row
	rowNumber  int
	err        error
	settings   config.CSVSettings
}

// NewStreamingParser reads the header rows from r and positions the parser
// at the first data row.
func NewStreamingParser(r io.Reader, settings config.CSVSettings) (*StreamingParser, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(reader, settings)

	parser := &StreamingParser{
		reader:   reader,
		settings: settings,
	}

	if err := parser.readHeaders(); err != nil {
		return nil, err
	}
	if err := parser.skipToDataStart(); err != nil {
		return nil, err
	}

	return parser, nil
}

// decode wraps r with a decoder for the named encoding. UTF-8 input has a
// leading byte order mark removed.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrUnreadable, encoding)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// readHeaders reads and merges the header rows.
func (p *StreamingParser) readHeaders() error {
	count := max(p.settings.HeaderRows, 1)
	headerRows := make([][]string, 0, count)

	for i := 0; i < count; i++ {
		row, err := p.reader.Read()
		if err == io.EOF {
			if i == 0 {
				return ErrEmptyFile
			}
			return fmt.Errorf("%w: file ends inside the header rows", ErrEmptyFile)
		}
		if err != nil {
			return fmt.Errorf("%w: header row %d: %v", ErrUnreadable, i+1, err)
		}
		headerRows = append(headerRows, row)
		p.rowNumber++
	}

	p.headers = mergeHeaders(headerRows)
	return nil
}

// skipToDataStart skips rows until the data start row.
func (p *StreamingParser) skipToDataStart() error {
	targetRow := p.settings.DataStartRow
	if targetRow <= 0 {
		targetRow = p.settings.HeaderRows + 1
	}

	for p.rowNumber < targetRow-1 {
		_, err := p.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrUnreadable, p.rowNumber+1, err)
		}
		p.rowNumber++
	}

	return nil
}

// Next advances to the next non-empty row. Returns false when there are no
// more rows or an error occurred.
func (p *StreamingParser) Next() bool {
	for p.err == nil {
		record, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("%w: row %d: %v", ErrUnreadable, p.rowNumber+1, err)
			return false
		}

		p.rowNumber++

		if isRowEmpty(record) {
			continue
		}

		p.currentRow = p.toRow(record)
		return true
	}
	return false
}

// toRow keys a record by the headers. Cells past the last header get
// Column_N names, which are added to the header list.
func (p *StreamingParser) toRow(record []string) types.Row {
	var row types.Row
	for i, cell := range record {
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		for i >= len(p.headers) {
			p.headers = append(p.headers, uniqueName(p.headers, fmt.Sprintf("Column_%d", len(p.headers)+1)))
		}
		row.Set(p.headers[i], types.String(value))
	}
	return row
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.currentRow
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return append([]string(nil), p.headers...)
}

// RowNumber returns the current row number (1-indexed).
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// =============================================================================
// HEADERS
// =============================================================================

// mergeHeaders joins the non-empty parts of each header column with a
// space, then cleans the result.
//
// Example:
//
//	Row 1: "Contract", "", "Employee", ""
//	Row 2: "Start",    "End", "ID",    "Name"
//	Result: "Contract Start", "End", "Employee ID", "Name"
func mergeHeaders(rows [][]string) []string {
	if len(rows) == 1 {
		return cleanHeaders(rows[0])
	}

	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len(row))
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range rows {
			if col < len(row) {
				if value := strings.TrimSpace(row[col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers)
}

// cleanHeaders trims names, fills blanks with Column_N and suffixes
// repeats with _1, _2, ...
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, 0, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned = append(cleaned, uniqueName(cleaned, header))
	}

	return cleaned
}

// uniqueName returns name, or name_N for the first N that is not taken.
func uniqueName(taken []string, name string) string {
	candidate := name
	for n := 1; contains(taken, candidate); n++ {
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	return candidate
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
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
