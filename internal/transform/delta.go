package transform

import (
	"github.com/ginjaninja78/sheetops/internal/calendar"
	"github.com/ginjaninja78/sheetops/internal/types"
)

// =============================================================================
// DATE DELTA MARKERS
// =============================================================================

const (
	// DeltaColumnSeparator joins the start and end column names into the
	// name of the derived column.
	DeltaColumnSeparator = "_to_"

	// MarkerInvalidDate is written when a date cannot be parsed.
	MarkerInvalidDate = "invalid date"

	// MarkerNoEndDate is written when the start date is valid and the end
	// cell is empty.
	MarkerNoEndDate = "no end date"
)

// DeltaColumn returns the derived column name for spec.
func DeltaColumn(spec types.DatePairSpec) string {
	return spec.StartColumn + DeltaColumnSeparator + spec.EndColumn
}

// =============================================================================
// DATE DELTAS
// =============================================================================

// ComputeDeltas returns a copy of table in which every row gains one column
// per spec holding the day difference end - start. Bad dates never fail the
// call; they become MarkerInvalidDate or MarkerNoEndDate in that row.
//
// When two specs derive the same column name the later one wins.
func ComputeDeltas(table types.Table, specs []types.DatePairSpec) types.Table {
	out := types.Table{
		Header: deltaHeader(table.Header, specs),
		Rows:   make([]types.Row, len(table.Rows)),
	}
	for i, row := range table.Rows {
		out.Rows[i] = deltaRow(row, specs)
	}
	return out
}

// deltaRow computes every spec for one row.
func deltaRow(row types.Row, specs []types.DatePairSpec) types.Row {
	out := row.Clone()
	for _, spec := range specs {
		out.Set(DeltaColumn(spec), DayDelta(row, spec))
	}
	return out
}

// DayDelta computes one spec against one row.
func DayDelta(row types.Row, spec types.DatePairSpec) types.Value {
	startValue := row.Value(spec.StartColumn)
	endValue := row.Value(spec.EndColumn)

	start, startOK := absoluteDay(startValue, spec.StartCalendar)
	end, endOK := absoluteDay(endValue, spec.EndCalendar)

	switch {
	case startOK && endOK:
		return types.Int(end - start)
	case startOK && endValue.IsEmpty():
		return types.String(MarkerNoEndDate)
	default:
		return types.String(MarkerInvalidDate)
	}
}

// absoluteDay reads a cell as a date in cal. Numeric cells in the Standard
// calendar are spreadsheet date serials.
func absoluteDay(v types.Value, cal types.Calendar) (int, bool) {
	if v.IsEmpty() {
		return 0, false
	}
	if n, ok := v.Float(); ok && cal == types.CalendarStandard {
		d, ok := calendar.FromExcelSerial(n)
		if !ok {
			return 0, false
		}
		return calendar.AbsoluteDay(d), true
	}

	d, ok := calendar.ParseDate(v.String(), cal)
	if !ok {
		return 0, false
	}
	return calendar.ToAbsoluteDay(d, cal)
}

// deltaHeader extends a declared header with the derived columns.
func deltaHeader(header []string, specs []types.DatePairSpec) []string {
	if len(header) == 0 {
		return nil
	}
	out := append([]string(nil), header...)
	for _, spec := range specs {
		out = appendUnique(out, DeltaColumn(spec))
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, item := range list {
		if item == s {
			return list
		}
	}
	return append(list, s)
}
