package xlsxparser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// writeWorkbook saves rows to Sheet1 of a new workbook and returns its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	r := require.New(t)

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		r.NoError(err)
		r.NoError(f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	r.NoError(f.SaveAs(path))
	return path
}

func TestReadFile(t *testing.T) {
	r := require.New(t)

	path := writeWorkbook(t, [][]any{
		{"id", "name", "active", "start"},
		{1, "Sara", true, "1400/01/01"},
		{},
		{2.5, nil, false, "1400/01/10"},
	})

	table, err := ReadFile(path, Options{})
	r.NoError(err)

	r.Equal([]string{"id", "name", "active", "start"}, table.Header)
	r.Len(table.Rows, 2)

	first := table.Rows[0]
	r.Equal(types.Number(1), first.Value("id"))
	r.Equal(types.String("Sara"), first.Value("name"))
	r.Equal(types.Bool(true), first.Value("active"))
	r.Equal(types.String("1400/01/01"), first.Value("start"))

	second := table.Rows[1]
	r.Equal(types.Number(2.5), second.Value("id"))
	r.False(second.Has("name"))
	r.Equal(types.Bool(false), second.Value("active"))
	r.Equal([]string{"id", "active", "start"}, second.Columns())
}

func TestReadHeaders(t *testing.T) {
	r := require.New(t)

	path := writeWorkbook(t, [][]any{
		{"code", "", "code", " name ", "code"},
		{"a", "b", "c", "d", "e", "f"},
	})

	table, err := ReadFile(path, Options{})
	r.NoError(err)
	r.Equal([]string{"code", "Column_2", "code_1", "name", "code_2", "Column_6"}, table.Header)
	r.Equal(types.String("f"), table.Rows[0].Value("Column_6"))
}

func TestReadNamedSheet(t *testing.T) {
	r := require.New(t)

	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	r.NoError(err)
	r.NoError(f.SetCellValue("Data", "A1", "k"))
	r.NoError(f.SetCellValue("Data", "A2", "v"))

	var buf bytes.Buffer
	r.NoError(f.Write(&buf))
	r.NoError(f.Close())

	table, err := Read(bytes.NewReader(buf.Bytes()), Options{Sheet: "Data"})
	r.NoError(err)
	r.Equal(types.String("v"), table.Rows[0].Value("k"))

	// the first sheet is empty
	_, err = Read(bytes.NewReader(buf.Bytes()), Options{})
	r.ErrorIs(err, ErrEmptySheet)

	_, err = Read(bytes.NewReader(buf.Bytes()), Options{Sheet: "Missing"})
	r.ErrorIs(err, ErrSheetNotFound)
}

func TestReadErrors(t *testing.T) {
	r := require.New(t)

	headerOnly := writeWorkbook(t, [][]any{{"id", "name"}})
	_, err := ReadFile(headerOnly, Options{})
	r.ErrorIs(err, ErrEmptySheet)

	blankRows := writeWorkbook(t, [][]any{{"id"}, {""}, {"  "}})
	_, err = ReadFile(blankRows, Options{})
	r.ErrorIs(err, ErrEmptySheet)

	garbage := filepath.Join(t.TempDir(), "bad.xlsx")
	r.NoError(os.WriteFile(garbage, []byte("not a workbook"), 0o644))
	_, err = ReadFile(garbage, Options{})
	r.ErrorIs(err, ErrUnreadable)
	r.NotErrorIs(err, ErrEmptySheet)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	r.ErrorIs(err, ErrUnreadable)
}

func TestSheetNames(t *testing.T) {
	r := require.New(t)

	path := writeWorkbook(t, [][]any{{"a"}, {1}})
	names, err := SheetNames(path)
	r.NoError(err)
	r.Equal([]string{"Sheet1"}, names)
}
