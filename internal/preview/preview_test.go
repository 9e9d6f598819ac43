package preview

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheetops/internal/types"
)

type flagAll struct{ column string }

func (f flagAll) Flagged(_ int, column string) bool { return column == f.column }

func numbered(n int) types.Table {
	t := types.Table{Header: []string{"id", "name"}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, types.NewRow(
			types.F("id", types.Number(float64(i+1))),
			types.F("name", types.String("row"+strconv.Itoa(i+1))),
		))
	}
	return t
}

func TestRender(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(Render(&buf, numbered(3), nil, Options{}))

	out := buf.String()
	r.Contains(out, "id")
	r.Contains(out, "name")
	r.Contains(out, "row3")
	r.NotContains(out, "Showing")
	r.NotContains(out, "\x1b[")
}

func TestRenderTruncates(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(Render(&buf, numbered(12), nil, Options{Rows: 5}))

	out := buf.String()
	r.Contains(out, "row5")
	r.NotContains(out, "row6")
	r.Contains(out, "Showing the first 5 of 12 rows.")
}

func TestRenderHighlight(t *testing.T) {
	r := require.New(t)
	text.EnableColors()

	testCases := []struct {
		name    string
		color   bool
		colored bool
	}{
		{name: "color on", color: true, colored: true},
		{name: "color off", color: false, colored: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			r.NoError(Render(&buf, numbered(2), flagAll{column: "name"}, Options{Color: tc.color}))
			if tc.colored {
				r.Contains(buf.String(), highlight.Sprint("row1"))
			} else {
				r.NotContains(buf.String(), "\x1b[")
			}
		})
	}
}

func TestNoResults(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(NoResults(&buf, "group"))
	r.Equal(NoResultsMessage("group")+"\n", buf.String())
	r.Equal("No results.", NoResultsMessage("calculate"))
	r.NotEqual(NoResultsMessage("merge"), NoResultsMessage("group"))
}
