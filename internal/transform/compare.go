package transform

import (
	"github.com/ginjaninja78/sheetops/internal/types"
)

// =============================================================================
// COMPARISON CONSTANTS
// =============================================================================

const (
	// RightColumnPrefix qualifies right-side columns copied into the output.
	RightColumnPrefix = "(file2) "

	// SummaryColumn holds the per-row verdict.
	SummaryColumn = "differences_summary"

	// SummaryDiffers and SummaryMatches are the two verdicts.
	SummaryDiffers = "differs"
	SummaryMatches = "matches"
)

// QualifiedColumn returns the output column carrying the right-side value
// of a compared pair.
func QualifiedColumn(rightColumn string) string {
	return RightColumnPrefix + rightColumn
}

// =============================================================================
// DIFF FLAGS
// =============================================================================

// DiffSet is the set of column names flagged as differing in one output
// row. It is annotation, not data: it never appears among a row's columns.
type DiffSet map[string]struct{}

// Has reports whether column is flagged.
func (d DiffSet) Has(column string) bool {
	_, ok := d[column]
	return ok
}

// Len returns the number of flagged columns.
func (d DiffSet) Len() int { return len(d) }

func (d DiffSet) add(columns ...string) {
	for _, c := range columns {
		d[c] = struct{}{}
	}
}

// Comparison is the output of Compare: the data table plus one DiffSet per
// row, aligned by index.
type Comparison struct {
	Table types.Table
	Diffs []DiffSet
}

// Differing returns the number of rows whose verdict is SummaryDiffers.
func (c Comparison) Differing() int {
	n := 0
	for _, d := range c.Diffs {
		if d.Len() > 0 {
			n++
		}
	}
	return n
}

// Flagged reports whether column in row i is flagged as differing.
func (c Comparison) Flagged(i int, column string) bool {
	if i < 0 || i >= len(c.Diffs) {
		return false
	}
	return c.Diffs[i].Has(column)
}

// =============================================================================
// COMPARE
// =============================================================================

// Compare matches each left row to the right row sharing its key and
// compares the configured column pairs by string form, treating absent
// values as the empty string. When right holds a key more than once the
// last row wins.
//
// Each output row is the left row, plus one qualified column per pair with
// the right value, plus SummaryColumn.
func Compare(left, right types.Table, keys types.JoinKeySpec, pairs []types.ComparisonPairSpec) Comparison {
	index := indexLast(right, keys.RightKey)

	out := Comparison{
		Table: types.Table{
			Header: compareHeader(left.Header, pairs),
			Rows:   make([]types.Row, len(left.Rows)),
		},
		Diffs: make([]DiffSet, len(left.Rows)),
	}
	for i, row := range left.Rows {
		match, ok := index[KeyOf(row, keys.LeftKey)]
		out.Table.Rows[i], out.Diffs[i] = compareRow(row, match, ok, pairs)
	}
	return out
}

// compareRow builds one output row and its flags.
func compareRow(row, match types.Row, matched bool, pairs []types.ComparisonPairSpec) (types.Row, DiffSet) {
	out := row.Clone()
	diffs := DiffSet{}

	for _, pair := range pairs {
		qualified := QualifiedColumn(pair.RightColumn)

		leftValue := row.Value(pair.LeftColumn)
		rightValue := types.Null()
		if matched {
			rightValue = match.Value(pair.RightColumn)
		}
		out.Set(qualified, rightValue)

		if leftValue.String() != rightValue.String() {
			diffs.add(pair.LeftColumn, qualified)
		}
	}

	if diffs.Len() > 0 {
		out.Set(SummaryColumn, types.String(SummaryDiffers))
	} else {
		out.Set(SummaryColumn, types.String(SummaryMatches))
	}
	return out, diffs
}

// indexLast maps each key to the last row carrying it.
func indexLast(table types.Table, column string) map[string]types.Row {
	index := make(map[string]types.Row, len(table.Rows))
	for _, row := range table.Rows {
		index[KeyOf(row, column)] = row
	}
	return index
}

func compareHeader(header []string, pairs []types.ComparisonPairSpec) []string {
	if len(header) == 0 {
		return nil
	}
	out := append([]string(nil), header...)
	for _, pair := range pairs {
		out = appendUnique(out, QualifiedColumn(pair.RightColumn))
	}
	return appendUnique(out, SummaryColumn)
}
