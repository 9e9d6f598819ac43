package transform

import (
	"github.com/ginjaninja78/sheetops/internal/types"
)

// KeyOf returns the string form of a row's key column. Every engine matches
// keys through this, so the number 5 and the text "5" are the same key.
func KeyOf(row types.Row, column string) string {
	return row.Value(column).String()
}

// =============================================================================
// FAN-OUT JOIN
// =============================================================================

// Join performs a left outer join of left and right on keys.
//
// Each left row is emitted once per matching right row, in right-row order,
// merged with that right row minus its key column; on overlapping columns
// the right value wins. A left row with no match is emitted unchanged.
func Join(left, right types.Table, keys types.JoinKeySpec) types.Table {
	index := indexMany(right, keys.RightKey)

	out := types.Table{
		Header: joinHeader(left, right, keys.RightKey),
		Rows:   make([]types.Row, 0, len(left.Rows)),
	}
	for _, row := range left.Rows {
		matches := index[KeyOf(row, keys.LeftKey)]
		if len(matches) == 0 {
			out.Rows = append(out.Rows, row.Clone())
			continue
		}
		for _, match := range matches {
			out.Rows = append(out.Rows, row.Merge(match, keys.RightKey))
		}
	}
	return out
}

// indexMany groups rows by key, keeping row order inside each bucket.
func indexMany(table types.Table, column string) map[string][]types.Row {
	index := make(map[string][]types.Row, len(table.Rows))
	for _, row := range table.Rows {
		key := KeyOf(row, column)
		index[key] = append(index[key], row)
	}
	return index
}

// joinHeader is the left header followed by the right header without its
// key column. It is nil unless both sides declare a header.
func joinHeader(left, right types.Table, rightKey string) []string {
	if len(left.Header) == 0 || len(right.Header) == 0 {
		return nil
	}
	out := append([]string(nil), left.Header...)
	for _, h := range right.Header {
		if h == rightKey {
			continue
		}
		out = appendUnique(out, h)
	}
	return out
}
