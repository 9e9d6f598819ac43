// Package preview renders result tables for the terminal.
package preview

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// DefaultRows is the number of rows shown when Options.Rows is not positive.
const DefaultRows = 100

// Flagger reports whether a cell is marked as differing.
type Flagger interface {
	Flagged(row int, column string) bool
}

// Options control rendering.
type Options struct {
	// Rows is the maximum number of rows rendered.
	Rows int
	// Color enables highlighting of flagged cells.
	Color bool
}

var highlight = text.Colors{text.BgYellow, text.FgBlack}

// Render writes the first rows of t as a table. flags may be nil. When rows
// are cut off a note with the full count follows the table.
func Render(w io.Writer, t types.Table, flags Flagger, opts Options) error {
	limit := opts.Rows
	if limit <= 0 {
		limit = DefaultRows
	}

	columns := t.Columns()
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	shown := t.Head(limit)
	rows := make([]table.Row, 0, len(shown.Rows))
	for i, row := range shown.Rows {
		out := make(table.Row, len(columns))
		for j, c := range columns {
			s := row.Value(c).String()
			if opts.Color && flags != nil && flags.Flagged(i, c) {
				s = highlight.Sprint(s)
			}
			out[j] = s
		}
		rows = append(rows, out)
	}

	tw := table.NewWriter()
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.Style().Options.DrawBorder = false

	if _, err := io.WriteString(w, tw.Render()+"\n"); err != nil {
		return err
	}

	if t.Len() > len(shown.Rows) {
		if _, err := fmt.Fprintf(w, "Showing the first %d of %d rows. The written file holds all rows.\n", len(shown.Rows), t.Len()); err != nil {
			return err
		}
	}
	return nil
}

// NoResults writes the message shown for an empty result of mode.
func NoResults(w io.Writer, mode string) error {
	_, err := fmt.Fprintln(w, NoResultsMessage(mode))
	return err
}

// NoResultsMessage returns the message for an empty result of mode.
func NoResultsMessage(mode string) string {
	switch mode {
	case "group":
		return "No records with duplicate values in the key column were found."
	case "merge":
		return "No rows matched between the two tables."
	default:
		return "No results."
	}
}
