package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	r := require.New(t)

	testCases := []struct {
		format   string
		ext      string
		params   map[string]string
		expected string
	}{
		{"{name}", "xlsx", map[string]string{"name": "merged_file"}, "merged_file.xlsx"},
		{"{job}-{mode}", "csv", map[string]string{"job": "tenure", "mode": "calculate"}, "tenure-calculate.csv"},
		{"report.json", "json", nil, "report.json"},
		{"{job}", "xlsx", map[string]string{"job": "a/b"}, "a_b.xlsx"},
		{"", "xlsx", nil, "output.xlsx"},
	}

	for _, tc := range testCases {
		r.Equal(tc.expected, GenerateOutputFileName(tc.format, tc.ext, tc.params), tc.format)
	}

	name := GenerateOutputFileName("{name}_{timestamp}_{uuid}", "xlsx", map[string]string{"name": "x"})
	r.Regexp(regexp.MustCompile(`^x_\d{8}_\d{6}_[0-9a-f-]{36}\.xlsx$`), name)
}

func TestEnsureDir(t *testing.T) {
	r := require.New(t)

	dir := filepath.Join(t.TempDir(), "a", "b")
	r.False(FileExists(dir))
	r.NoError(EnsureDir(dir))
	r.True(FileExists(dir))
	r.NoError(EnsureDir(""))
}

func TestWriteSummary(t *testing.T) {
	r := require.New(t)

	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	summary := ProcessingSummary{
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Jobs: []JobSummary{
			{Name: "joined", Mode: "merge", Inputs: []string{"a.xlsx", "b.xlsx"}, OutputFile: "out/merged_file.xlsx", RowsIn: 2, RowsOut: 3},
			{Name: "dupes", Mode: "group", RowsIn: 2, NoResults: true},
			{Name: "broken", Mode: "compare", Error: "precondition failed"},
		},
	}

	var buf bytes.Buffer
	r.NoError(WriteSummary(&buf, summary))
	out := buf.String()

	r.Contains(out, "Total Jobs:     3")
	r.Contains(out, "Successful:     2")
	r.Contains(out, "Failed:         1")
	r.Contains(out, "Inputs:       a.xlsx, b.xlsx")
	r.Contains(out, "Rows:         2 in, 3 out")
	r.Contains(out, "no results")
	r.Contains(out, "Error:        precondition failed")

	path, err := WriteSummaryFile(t.TempDir(), summary)
	r.NoError(err)
	r.True(strings.HasPrefix(filepath.Base(path), "processing_summary_"))
	data, err := os.ReadFile(path)
	r.NoError(err)
	r.Equal(out, string(data))
}
