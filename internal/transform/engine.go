// =============================================================================
// sheetops - Transformation Engine
// =============================================================================
//
// This module wraps the four table operations (date deltas, join, duplicate
// groups, comparison) behind one Engine that:
//   - runs per-row work on a bounded pool of goroutines
//   - keeps the output row order identical to the sequential algorithm
//   - collects statistics for the run summary
//
// CONCURRENCY:
//   Rows are split into contiguous chunks. Each chunk writes into its own
//   range of a pre-sized output slice, so no locking is needed and the
//   final order never depends on scheduling.
//
// =============================================================================

package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// =============================================================================
// MODES
// =============================================================================

// Mode selects one of the four operations.
type Mode string

const (
	ModeCalculate Mode = "calculate"
	ModeMerge     Mode = "merge"
	ModeGroup     Mode = "group"
	ModeCompare   Mode = "compare"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeCalculate, ModeMerge, ModeGroup, ModeCompare}

// ParseMode accepts a mode name, case-insensitively. "join" and
// "duplicates" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calculate", "calc", "delta", "deltas":
		return ModeCalculate, nil
	case "merge", "join":
		return ModeMerge, nil
	case "group", "duplicates":
		return ModeGroup, nil
	case "compare", "diff":
		return ModeCompare, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// TwoTables reports whether the mode reads a left and a right table.
func (m Mode) TwoTables() bool {
	return m == ModeMerge || m == ModeCompare
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one operation.
type Result struct {
	// Mode is the operation that produced the result.
	Mode Mode

	// Table is the output table.
	Table types.Table

	// Diffs holds per-row difference flags. Only ModeCompare sets it.
	Diffs []DiffSet

	// NoResults is true when the operation legitimately found nothing,
	// such as a duplicate search over unique keys or a join where no left
	// row matched. Callers report it as "no results", not as a failure.
	NoResults bool

	// Stats contains processing statistics.
	Stats Stats
}

// Flagged reports whether column in row i is marked as differing.
func (r Result) Flagged(i int, column string) bool {
	if i < 0 || i >= len(r.Diffs) {
		return false
	}
	return r.Diffs[i].Has(column)
}

// Stats contains statistics about one operation.
type Stats struct {
	// RowsIn is the number of input rows (left rows for two-table modes).
	RowsIn int

	// RowsOut is the number of output rows.
	RowsOut int

	// Matched and Unmatched count left rows that did or did not find a
	// right-side key (merge and compare).
	Matched   int
	Unmatched int

	// Differing counts compare rows with at least one differing pair.
	Differing int

	// InvalidDates and MissingEndDates count delta markers (calculate).
	InvalidDates    int
	MissingEndDates int

	// DuplicateKeys counts distinct repeated keys (group).
	DuplicateKeys int

	// Duration is the time taken by the operation.
	Duration time.Duration
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs table operations.
type Engine struct {
	workers   int
	chunkSize int
	locale    string
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of goroutines used for per-row work.
// Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithChunkSize sets how many rows one goroutine handles at a time.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithLocale sets the collation locale for duplicate-group sorting.
func WithLocale(locale string) Option {
	return func(e *Engine) { e.locale = locale }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers:   1,
		chunkSize: 1000,
		locale:    DefaultLocale,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Calculate computes date deltas for every spec. See ComputeDeltas.
func (e *Engine) Calculate(ctx context.Context, table types.Table, specs []types.DatePairSpec) (Result, error) {
	start := time.Now()

	rows, err := e.mapRows(ctx, table.Rows, func(row types.Row) types.Row {
		return deltaRow(row, specs)
	})
	if err != nil {
		return Result{}, err
	}

	out := types.Table{Header: deltaHeader(table.Header, specs), Rows: rows}
	stats := Stats{RowsIn: table.Len(), RowsOut: out.Len()}
	for _, row := range out.Rows {
		for _, spec := range specs {
			switch row.Value(DeltaColumn(spec)).String() {
			case MarkerInvalidDate:
				stats.InvalidDates++
			case MarkerNoEndDate:
				stats.MissingEndDates++
			}
		}
	}
	stats.Duration = time.Since(start)

	e.logger.Debug("computed date deltas",
		"rows", stats.RowsOut,
		"pairs", len(specs),
		"invalid", stats.InvalidDates,
		"missing_end", stats.MissingEndDates,
	)

	return Result{Mode: ModeCalculate, Table: out, Stats: stats}, nil
}

// Merge joins left and right. See Join.
func (e *Engine) Merge(ctx context.Context, left, right types.Table, keys types.JoinKeySpec) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	out := Join(left, right, keys)

	index := indexMany(right, keys.RightKey)
	stats := Stats{RowsIn: left.Len(), RowsOut: out.Len()}
	for _, row := range left.Rows {
		if len(index[KeyOf(row, keys.LeftKey)]) > 0 {
			stats.Matched++
		} else {
			stats.Unmatched++
		}
	}
	stats.Duration = time.Since(start)

	e.logger.Debug("joined tables",
		"left_rows", left.Len(),
		"right_rows", right.Len(),
		"output_rows", stats.RowsOut,
		"matched", stats.Matched,
	)

	return Result{
		Mode:      ModeMerge,
		Table:     out,
		NoResults: stats.Matched == 0,
		Stats:     stats,
	}, nil
}

// Group returns the duplicate-key rows. See FindDuplicates.
func (e *Engine) Group(ctx context.Context, table types.Table, keyColumn string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	out := FindDuplicates(table, keyColumn, NewCollator(e.locale))

	keys := make(map[string]struct{})
	for _, row := range out.Rows {
		keys[KeyOf(row, keyColumn)] = struct{}{}
	}
	stats := Stats{
		RowsIn:        table.Len(),
		RowsOut:       out.Len(),
		DuplicateKeys: len(keys),
		Duration:      time.Since(start),
	}

	e.logger.Debug("grouped duplicates",
		"rows", stats.RowsIn,
		"duplicate_rows", stats.RowsOut,
		"duplicate_keys", stats.DuplicateKeys,
	)

	return Result{
		Mode:      ModeGroup,
		Table:     out,
		NoResults: out.IsEmpty(),
		Stats:     stats,
	}, nil
}

// Compare diffs left against right. See the package-level Compare.
func (e *Engine) Compare(ctx context.Context, left, right types.Table, keys types.JoinKeySpec, pairs []types.ComparisonPairSpec) (Result, error) {
	start := time.Now()

	index := indexLast(right, keys.RightKey)
	diffs := make([]DiffSet, len(left.Rows))
	matched := make([]bool, len(left.Rows))

	rows, err := e.mapIndexed(ctx, left.Rows, func(i int, row types.Row) types.Row {
		match, ok := index[KeyOf(row, keys.LeftKey)]
		matched[i] = ok
		var out types.Row
		out, diffs[i] = compareRow(row, match, ok, pairs)
		return out
	})
	if err != nil {
		return Result{}, err
	}

	cmp := Comparison{
		Table: types.Table{Header: compareHeader(left.Header, pairs), Rows: rows},
		Diffs: diffs,
	}
	stats := Stats{RowsIn: left.Len(), RowsOut: len(rows), Differing: cmp.Differing()}
	for _, ok := range matched {
		if ok {
			stats.Matched++
		} else {
			stats.Unmatched++
		}
	}
	stats.Duration = time.Since(start)

	e.logger.Debug("compared tables",
		"rows", stats.RowsOut,
		"pairs", len(pairs),
		"differing", stats.Differing,
		"unmatched", stats.Unmatched,
	)

	return Result{Mode: ModeCompare, Table: cmp.Table, Diffs: cmp.Diffs, Stats: stats}, nil
}

// =============================================================================
// PARALLEL ROW MAPPING
// =============================================================================

// mapRows applies fn to every row. See mapIndexed.
func (e *Engine) mapRows(ctx context.Context, rows []types.Row, fn func(types.Row) types.Row) ([]types.Row, error) {
	return e.mapIndexed(ctx, rows, func(_ int, row types.Row) types.Row { return fn(row) })
}

// mapIndexed applies fn to every row and returns the results in input
// order. fn must only write state owned by index i.
func (e *Engine) mapIndexed(ctx context.Context, rows []types.Row, fn func(int, types.Row) types.Row) ([]types.Row, error) {
	out := make([]types.Row, len(rows))

	if e.workers <= 1 || len(rows) <= e.chunkSize {
		for i, row := range rows {
			if i%e.chunkSize == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out[i] = fn(i, row)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < len(rows); lo += e.chunkSize {
		lo := lo
		hi := min(lo+e.chunkSize, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = fn(i, rows[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
