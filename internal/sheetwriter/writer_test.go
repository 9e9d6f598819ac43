package sheetwriter

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheetops/internal/types"
	"github.com/ginjaninja78/sheetops/internal/xlsxparser"
)

// flagSet is a Flagger over explicit row/column pairs.
type flagSet map[int][]string

func (f flagSet) Flagged(row int, column string) bool {
	for _, c := range f[row] {
		if c == column {
			return true
		}
	}
	return false
}

func sampleTable() types.Table {
	return types.Table{
		Header: []string{"id", "price"},
		Rows: []types.Row{
			types.NewRow(
				types.F("id", types.String("1")),
				types.F("price", types.Number(10.5)),
				types.F("(file2) price", types.Number(12)),
				types.F("differences_summary", types.String("differs")),
			),
			types.NewRow(
				types.F("id", types.String("2")),
				types.F("active", types.Bool(true)),
			),
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	flags := flagSet{0: {"price", "(file2) price"}}
	r.NoError(WriteXLSX(&buf, sampleTable(), flags))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	r.NoError(err)
	defer f.Close()

	r.Equal([]string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	r.NoError(err)
	r.Equal([]string{"id", "price", "(file2) price", "differences_summary", "active"}, rows[0])
	r.Equal([]string{"1", "10.5", "12", "differs"}, rows[1][:4])

	flagged, err := f.GetCellStyle(SheetName, "B2")
	r.NoError(err)
	r.NotZero(flagged)
	other, err := f.GetCellStyle(SheetName, "C2")
	r.NoError(err)
	r.Equal(flagged, other)
	plain, err := f.GetCellStyle(SheetName, "A2")
	r.NoError(err)
	r.NotEqual(flagged, plain)

	// round trip through the reader keeps order and types
	table, err := xlsxparser.Read(bytes.NewReader(buf.Bytes()), xlsxparser.Options{})
	r.NoError(err)
	r.Equal([]string{"id", "price", "(file2) price", "differences_summary", "active"}, table.Header)
	r.Equal(types.Number(10.5), table.Rows[0].Value("price"))
	r.Equal(types.Bool(true), table.Rows[1].Value("active"))
	r.False(table.Rows[1].Has("price"))
}

func TestWriteCSV(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(WriteCSV(&buf, sampleTable()))
	r.Equal("id,price,(file2) price,differences_summary,active\n"+
		"1,10.5,12,differs,\n"+
		"2,,,,true\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(WriteJSON(&buf, sampleTable()))
	r.JSONEq(`[
		{"id": "1", "price": 10.5, "(file2) price": 12, "differences_summary": "differs"},
		{"id": "2", "active": true}
	]`, buf.String())

	// keys keep column order
	r.Less(bytes.Index(buf.Bytes(), []byte(`"price"`)), bytes.Index(buf.Bytes(), []byte(`"differences_summary"`)))

	buf.Reset()
	r.NoError(WriteJSON(&buf, types.Table{}))
	r.Equal("[]\n", buf.String())
}

func TestWriteXML(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	flags := flagSet{0: {"price"}}
	r.NoError(WriteXML(&buf, sampleTable(), flags))

	r.Equal(`<?xml version="1.0" encoding="UTF-8"?>
<results>
  <row n="1">
    <cell name="id" type="string">1</cell>
    <cell name="price" type="number" differs="true">10.5</cell>
    <cell name="(file2) price" type="number">12</cell>
    <cell name="differences_summary" type="string">differs</cell>
  </row>
  <row n="2">
    <cell name="id" type="string">2</cell>
    <cell name="active" type="bool">true</cell>
  </row>
</results>
`, buf.String())

	buf.Reset()
	opts := DefaultXMLOptions()
	opts.IncludeXMLDeclaration = false
	opts.RootElement = "merged"
	table := types.NewTable(types.NewRow(
		types.F(`say "hi"`, types.String(`a<b & "c"`)),
		types.F("raw", types.String("x\x01y")),
		types.F("blank", types.String("")),
	))
	r.NoError(WriteXMLWithOptions(&buf, table, nil, opts))
	r.Equal(`<merged>
  <row n="1">
    <cell name="say &#34;hi&#34;" type="string">a&lt;b &amp; &#34;c&#34;</cell>
    <cell name="raw" type="string">x�y</cell>
    <cell name="blank" type="string"></cell>
  </row>
</merged>
`, buf.String())
}

func TestWriteSQLite(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "out", "results.db")
	r.NoError(WriteFile(path, FormatSQLite, "merged", sampleTable(), nil))
	// writing again replaces the table
	r.NoError(WriteFile(path, FormatSQLite, "merged", sampleTable(), nil))

	db, err := sql.Open("sqlite", path)
	r.NoError(err)
	defer db.Close()

	var count int
	r.NoError(db.QueryRow(`SELECT COUNT(*) FROM "merged"`).Scan(&count))
	r.Equal(2, count)

	var price sql.NullFloat64
	var summary sql.NullString
	r.NoError(db.QueryRow(`SELECT "price", "differences_summary" FROM "merged" WHERE "id" = '1'`).Scan(&price, &summary))
	r.Equal(10.5, price.Float64)
	r.Equal("differs", summary.String)

	r.NoError(db.QueryRow(`SELECT "price" FROM "merged" WHERE "id" = '2'`).Scan(&price))
	r.False(price.Valid)
}

func TestWriteSQLiteCaseCollisions(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "results.db")
	table := types.NewTable(
		types.NewRow(
			types.F("Name", types.String("Sara")),
			types.F("name", types.String("sara")),
			types.F("NAME_1", types.String("taken")),
			types.F("NAME", types.Number(3)),
		),
	)
	r.NoError(WriteSQLite(path, "results", table))

	db, err := sql.Open("sqlite", path)
	r.NoError(err)
	defer db.Close()

	rows, err := db.Query(`SELECT * FROM "results"`)
	r.NoError(err)
	defer rows.Close()
	columns, err := rows.Columns()
	r.NoError(err)
	r.Equal([]string{"Name", "name_1", "NAME_1_1", "NAME_2"}, columns)

	r.True(rows.Next())
	var a, b, c string
	var d float64
	r.NoError(rows.Scan(&a, &b, &c, &d))
	r.Equal("Sara", a)
	r.Equal("sara", b)
	r.Equal("taken", c)
	r.Equal(3.0, d)
	r.NoError(rows.Err())
}

func TestWriteFileAndFormats(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	for _, format := range []string{FormatXLSX, FormatCSV, FormatJSON, FormatXML} {
		path := filepath.Join(dir, "nested", DefaultName("merge")+"."+Extension(format))
		r.NoError(WriteFile(path, format, "", sampleTable(), nil), format)
		r.Equal(format, FormatFromPath(path))
	}

	r.ErrorIs(Write(&bytes.Buffer{}, "yaml", sampleTable(), nil), ErrUnknownFormat)
	r.ErrorIs(Write(&bytes.Buffer{}, FormatSQLite, sampleTable(), nil), ErrUnknownFormat)

	r.Equal("date_difference_results", DefaultName("calculate"))
	r.Equal("grouped_records", DefaultName("group"))
	r.Equal("comparison_results", DefaultName("compare"))
	r.Equal("db", Extension(FormatSQLite))
	r.Equal(FormatSQLite, FormatFromPath("x.sqlite3"))
	r.Equal("", FormatFromPath("x.txt"))
}
