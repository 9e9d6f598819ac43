// =============================================================================
// sheetops - Shared Types
// =============================================================================
//
// This package contains the row/table data model shared by every other
// module. Types defined here are used by:
//   - calendar / transform (the engines)
//   - xlsxparser / csvparser (ingestion)
//   - sheetwriter / preview (output)
//
// ROW MODEL:
//   A Row is an ordered mapping from column name to a small tagged Value.
//   Rows from one table usually share a column set, but nothing here
//   requires it: a missing column reads back as Null.
//
// =============================================================================

package types

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// VALUE
// =============================================================================

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single scalar cell: string, number, boolean or absent.
// The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the absent value.
func Null() Value { return Value{} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int returns a numeric value holding an integer.
func Int(n int) Value { return Number(float64(n)) }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is absent or whitespace-only text.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// Boolean returns the boolean payload and whether v is a boolean.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// String is the single stringify rule every engine uses for key matching
// and comparison. Null is the empty string; whole numbers print without a
// fractional part.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface returns the payload as a plain Go value (nil, string, float64
// or bool). Serializers use it.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// formatNumber prints n the way spreadsheet tools print numbers: plain
// decimals between 1e-6 and 1e21, exponent form ("1e+21", "1.5e-7")
// outside that range, and "0" for both zeros.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	if abs := math.Abs(n); abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// =============================================================================
// ROW
// =============================================================================

// Row is an ordered mapping from column name to Value.
//
// The zero Row is empty and ready to use. Set mutates the receiver, so the
// engines always Clone a caller's row before writing to it.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow builds a row from fields, keeping their order.
func NewRow(fields ...Field) Row {
	r := Row{}
	for _, f := range fields {
		r.Set(f.Column, f.Value)
	}
	return r
}

// Field is one column/value pair, used to build rows literally.
type Field struct {
	Column string
	Value  Value
}

// F is shorthand for a Field.
func F(column string, value Value) Field { return Field{Column: column, Value: value} }

// Get returns the value stored under column and whether it was present.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value stored under column, or Null.
func (r Row) Value(column string) Value {
	return r.values[column]
}

// Has reports whether the row holds column.
func (r Row) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Set stores value under column. A new column is appended to the key order;
// an existing one keeps its position.
func (r *Row) Set(column string, value Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = value
}

// Delete removes column from the row.
func (r *Row) Delete(column string) {
	if _, ok := r.values[column]; !ok {
		return
	}
	delete(r.values, column)
	for i, k := range r.keys {
		if k == column {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.keys) }

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := Row{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]Value, len(r.values)),
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Merge returns a copy of r with every column of other written over it,
// skipping the columns listed in exclude.
func (r Row) Merge(other Row, exclude ...string) Row {
	out := r.Clone()
	for _, k := range other.keys {
		if contains(exclude, k) {
			continue
		}
		out.Set(k, other.values[k])
	}
	return out
}

// Equal reports whether both rows hold the same columns in the same order
// with identical values.
func (r Row) Equal(other Row) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || r.values[k] != other.values[k] {
			return false
		}
	}
	return true
}

// Map returns the row as a plain map of Go values.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k].Interface()
	}
	return m
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered sequence of rows. Order is significant: every
// operation preserves it unless it explicitly reorders.
type Table struct {
	// Header is the declared column order, usually the source sheet's
	// header row. When empty, Columns derives the order from the rows.
	Header []string

	// Rows holds the data rows.
	Rows []Row
}

// NewTable returns a table over rows with no declared header.
func NewTable(rows ...Row) Table {
	return Table{Rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Columns returns the column order used for rendering and export: the
// declared header, followed by any row columns it does not list, in
// first-seen order.
func (t Table) Columns() []string {
	seen := make(map[string]struct{}, len(t.Header))
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, h)
	}
	for _, r := range t.Rows {
		for _, k := range r.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// HasColumn reports whether any row (or the header) carries column.
func (t Table) HasColumn(column string) bool {
	if contains(t.Header, column) {
		return true
	}
	for _, r := range t.Rows {
		if r.Has(column) {
			return true
		}
	}
	return false
}

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Head returns a table holding at most n leading rows. The rows are shared,
// not copied.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Header: t.Header, Rows: t.Rows[:n]}
}
