package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/types"
)

func TestRead(t *testing.T) {
	r := require.New(t)

	input := "\ufeffid, start ,end,id\n" +
		"1,1400/01/01,1400/01/10,x\n" +
		"\n" +
		",,,\n" +
		"2, 1400/02/01 ,,y,extra\n"

	table, err := Read(strings.NewReader(input), config.DefaultCSVSettings())
	r.NoError(err)

	r.Equal([]string{"id", "start", "end", "id_1", "Column_5"}, table.Header)
	r.Len(table.Rows, 2)

	first := table.Rows[0]
	r.Equal(types.String("1"), first.Value("id"))
	r.Equal(types.String("1400/01/10"), first.Value("end"))
	r.Equal(types.String("x"), first.Value("id_1"))

	second := table.Rows[1]
	r.Equal(types.String("1400/02/01"), second.Value("start"))
	r.False(second.Has("end"))
	r.Equal(types.String("extra"), second.Value("Column_5"))
}

func TestReadSettings(t *testing.T) {
	r := require.New(t)

	testCases := []struct {
		name     string
		settings config.CSVSettings
		input    string
		header   []string
		rows     int
	}{
		{
			name:     "pipe",
			settings: config.CSVSettings{Delimiter: "pipe", HeaderRows: 1, DataStartRow: 2},
			input:    "a|b\n1|2\n",
			header:   []string{"a", "b"},
			rows:     1,
		},
		{
			name:     "tab",
			settings: config.CSVSettings{Delimiter: "\\t", HeaderRows: 1, DataStartRow: 2},
			input:    "a\tb\n1\t2\n3\t4\n",
			header:   []string{"a", "b"},
			rows:     2,
		},
		{
			name:     "multi-line header",
			settings: config.CSVSettings{Delimiter: ",", HeaderRows: 2, DataStartRow: 3},
			input:    "Contract,,Employee,\nStart,End,ID,Name\n1400/01/01,1400/02/01,7,Sara\n",
			header:   []string{"Contract Start", "End", "Employee ID", "Name"},
			rows:     1,
		},
		{
			name:     "data start after metadata",
			settings: config.CSVSettings{Delimiter: ";", HeaderRows: 1, DataStartRow: 4},
			input:    "a;b\nexported by;admin\n---;---\n1;2\n",
			header:   []string{"a", "b"},
			rows:     1,
		},
	}

	for _, tc := range testCases {
		table, err := Read(strings.NewReader(tc.input), tc.settings)
		r.NoError(err, tc.name)
		r.Equal(tc.header, table.Header, tc.name)
		r.Len(table.Rows, tc.rows, tc.name)
	}
}

func TestReadEncoding(t *testing.T) {
	r := require.New(t)

	encoded, err := charmap.Windows1256.NewEncoder().String("نام,شناسه\nسارا,1\n")
	r.NoError(err)

	settings := config.DefaultCSVSettings()
	settings.Encoding = "windows-1256"

	table, err := Read(bytes.NewReader([]byte(encoded)), settings)
	r.NoError(err)
	r.Equal([]string{"نام", "شناسه"}, table.Header)
	r.Equal(types.String("سارا"), table.Rows[0].Value("نام"))

	settings.Encoding = "klingon"
	_, err = Read(strings.NewReader("a\n1\n"), settings)
	r.ErrorIs(err, ErrUnreadable)
}

func TestReadErrors(t *testing.T) {
	r := require.New(t)
	settings := config.DefaultCSVSettings()

	_, err := Read(strings.NewReader(""), settings)
	r.ErrorIs(err, ErrEmptyFile)

	_, err = Read(strings.NewReader("id,name\n"), settings)
	r.ErrorIs(err, ErrEmptyFile)

	_, err = Read(strings.NewReader("id,name\n,\n  ,  \n"), settings)
	r.ErrorIs(err, ErrEmptyFile)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), settings)
	r.ErrorIs(err, ErrUnreadable)
	r.NotErrorIs(err, ErrEmptyFile)
}

func TestReadFile(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	r.NoError(os.WriteFile(path, []byte("k,v\na,1\nb,2\n"), 0o644))

	table, err := ReadFile(path, config.DefaultCSVSettings())
	r.NoError(err)
	r.Equal(2, table.Len())
	r.Equal(types.String("b"), table.Rows[1].Value("k"))
}
