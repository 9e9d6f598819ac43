package sheetwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// WriteCSV writes the header followed by one record per row. Absent cells
// are empty.
func WriteCSV(w io.Writer, table types.Table) error {
	columns := table.Columns()

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range table.Rows {
		for i, c := range columns {
			record[i] = row.Value(c).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the rows as an indented array of objects. Each object
// holds the row's own columns in order.
func WriteJSON(w io.Writer, table types.Table) error {
	data := make([]orderedRow, len(table.Rows))
	for i, row := range table.Rows {
		data[i] = orderedRow(row)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}
	out = append(out, '\n')

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

// orderedRow marshals a Row as an object with keys in column order.
type orderedRow types.Row

func (r orderedRow) MarshalJSON() ([]byte, error) {
	row := types.Row(r)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range row.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(jsonValue(row.Value(c)))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue maps a value for encoding/json. Non-finite numbers have no JSON
// form and are written as strings.
func jsonValue(v types.Value) any {
	if n, ok := v.Float(); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return v.String()
	}
	return v.Interface()
}
