package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/csvparser"
	"github.com/ginjaninja78/sheetops/internal/sheetwriter"
	"github.com/ginjaninja78/sheetops/internal/transform"
	"github.com/ginjaninja78/sheetops/internal/types"
	"github.com/ginjaninja78/sheetops/internal/validation"
	"github.com/ginjaninja78/sheetops/internal/xlsxparser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// chainConfig merges two CSV files and feeds the merged table to a
// calculate job.
func chainConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "employees.csv", "id,name,start\n1,Sara,1400/01/01\n2,Reza,1400/02/01\n")
	writeFile(t, dir, "leaves.csv", "emp,end\n1,1400/01/10\n")

	cfg, err := config.Parse([]byte(`
output_dir: ` + filepath.Join(dir, "out") + `
output_format: json
workers: 2
jobs:
  - name: merged
    mode: merge
    left:
      file: ` + filepath.Join(dir, "employees.csv") + `
    right:
      file: ` + filepath.Join(dir, "leaves.csv") + `
    join:
      left_key: id
      right_key: emp
  - name: tenure
    mode: calculate
    input:
      from: merged
    date_pairs:
      - start_column: start
        end_column: end
    output: ` + filepath.Join(dir, "tenure.csv") + `
`))
	require.NoError(t, err)
	return cfg, dir
}

func TestRunChain(t *testing.T) {
	r := require.New(t)

	cfg, dir := chainConfig(t)
	results, summary, err := New(cfg, nil).Run(context.Background())
	r.NoError(err)
	r.Len(results, 2)
	r.Len(summary.Jobs, 2)
	r.Zero(summary.Failed())

	merged := results[0]
	r.Equal(transform.ModeMerge, merged.Result.Mode)
	r.Equal(filepath.Join(dir, "out", "merged_file.json"), merged.OutputFile)
	r.FileExists(merged.OutputFile)
	r.Equal(1, merged.Result.Stats.Matched)

	tenure := results[1]
	r.Equal(filepath.Join(dir, "tenure.csv"), tenure.OutputFile)
	rows := tenure.Result.Table.Rows
	r.Len(rows, 2)
	r.Equal(types.Int(9), rows[0].Value("start_to_end"))
	r.Equal(types.String(transform.MarkerNoEndDate), rows[1].Value("start_to_end"))

	// the calculate output was written as CSV, chosen by extension
	written, err := csvparser.ReadFile(tenure.OutputFile, config.DefaultCSVSettings())
	r.NoError(err)
	r.Equal("9", written.Rows[0].Value("start_to_end").String())
	r.Equal("Sara", written.Rows[0].Value("name").String())

	// the merged table fed to calculate is unchanged
	r.False(merged.Result.Table.Rows[0].Has("start_to_end"))
}

func TestRunSelectsDependencies(t *testing.T) {
	r := require.New(t)

	cfg, _ := chainConfig(t)
	results, _, err := New(cfg, nil).Run(context.Background(), "tenure")
	r.NoError(err)
	r.Len(results, 2)
	r.Equal("merged", results[0].Job.Name)
	r.Equal("tenure", results[1].Job.Name)

	results, _, err = New(cfg, nil).Run(context.Background(), "merged")
	r.NoError(err)
	r.Len(results, 1)

	_, _, err = New(cfg, nil).Run(context.Background(), "missing")
	r.ErrorIs(err, ErrUnknownJob)
}

func TestRunCompareWorkbook(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	left := writeWorkbook(t, dir, "left.xlsx", [][]any{
		{"id", "price"},
		{1, 10},
		{2, 20},
	})
	right := writeFile(t, dir, "right.csv", "code,price\n1,10\n2,25\n")

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.FileNameFormat = "{job}_{name}"
	cfg.Jobs = []config.Job{{
		Name:         "prices",
		Mode:         "compare",
		Left:         config.Source{File: left},
		Right:        config.Source{File: right},
		Join:         types.JoinKeySpec{LeftKey: "id", RightKey: "code"},
		ComparePairs: []types.ComparisonPairSpec{{LeftColumn: "price", RightColumn: "price"}},
	}}

	results, _, err := New(cfg, nil).Run(context.Background())
	r.NoError(err)
	r.Len(results, 1)

	res := results[0]
	r.Equal(1, res.Result.Stats.Differing)
	r.True(res.Result.Flagged(1, "price"))
	r.False(res.Result.Flagged(0, "price"))
	r.Equal(filepath.Join(dir, "out", "prices_comparison_results.xlsx"), res.OutputFile)

	table, err := xlsxparser.ReadFile(res.OutputFile, xlsxparser.Options{Sheet: sheetwriter.SheetName})
	r.NoError(err)
	r.Len(table.Rows, 2)
	r.Contains(table.Header, transform.RightColumnPrefix+"price")
}

func TestRunNoResults(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", "id,name\n1,a\n2,b\n")

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Jobs = []config.Job{{
		Name:  "dupes",
		Mode:  "group",
		Input: config.Source{File: input},
		Key:   "id",
	}}

	results, summary, err := New(cfg, nil).Run(context.Background())
	r.NoError(err)
	r.True(results[0].Result.NoResults)
	r.Empty(results[0].OutputFile)
	r.True(summary.Jobs[0].NoResults)
	r.NoDirExists(cfg.OutputDir)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", "id,start\n1,1400/01/01\n")

	testCases := []struct {
		name string
		job  config.Job
		want error
	}{
		{
			name: "missing date pairs",
			job:  config.Job{Name: "calc", Mode: "calculate", Input: config.Source{File: input}},
			want: validation.ErrPrecondition,
		},
		{
			name: "missing right table",
			job: config.Job{
				Name: "merge", Mode: "merge",
				Left: config.Source{File: input},
				Join: types.JoinKeySpec{LeftKey: "id", RightKey: "id"},
			},
			want: validation.ErrPrecondition,
		},
		{
			name: "unreadable input",
			job: config.Job{
				Name: "calc", Mode: "calculate",
				Input:     config.Source{File: filepath.Join(dir, "absent.csv")},
				DatePairs: []types.DatePairSpec{{StartColumn: "start", EndColumn: "end"}},
			},
			want: csvparser.ErrUnreadable,
		},
		{
			name: "unknown from",
			job: config.Job{
				Name: "calc", Mode: "calculate",
				Input:     config.Source{From: "nowhere"},
				DatePairs: []types.DatePairSpec{{StartColumn: "start", EndColumn: "end"}},
			},
			want: ErrUnknownJob,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			cfg := config.Default()
			cfg.Jobs = []config.Job{tc.job}

			_, summary, err := New(cfg, nil).Run(context.Background())
			r.ErrorIs(err, tc.want)
			r.Equal(1, summary.Failed())
		})
	}
}

func TestRunChecksEveryJobFirst(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", "id,name\n1,a\n1,b\n")

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Jobs = []config.Job{
		{Name: "dupes", Mode: "group", Input: config.Source{File: input}, Key: "id"},
		{Name: "tenure", Mode: "calculate", Input: config.Source{From: "dupes"}},
	}

	results, summary, err := New(cfg, nil).Run(context.Background())
	r.ErrorIs(err, validation.ErrPrecondition)
	r.ErrorContains(err, `job "tenure"`)
	r.Empty(results)
	r.Equal(1, summary.Failed())
	r.NoDirExists(cfg.OutputDir)
}

func TestRunCancelled(t *testing.T) {
	r := require.New(t)

	cfg, _ := chainConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(cfg, nil).Run(ctx)
	r.ErrorIs(err, context.Canceled)
}

func TestOutputFormat(t *testing.T) {
	r := require.New(t)

	cfg := config.Default()
	r.Equal("xlsx", OutputFormat(config.Job{}, cfg))
	r.Equal("json", OutputFormat(config.Job{Output: "a/b.json"}, cfg))
	r.Equal("csv", OutputFormat(config.Job{Output: "a/b.json", Format: "csv"}, cfg))
	r.Equal("xlsx", OutputFormat(config.Job{Output: "a/b.out"}, cfg))
}
