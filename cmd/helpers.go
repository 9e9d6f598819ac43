package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/pipeline"
	"github.com/ginjaninja78/sheetops/internal/preview"
	"github.com/ginjaninja78/sheetops/internal/types"
	"github.com/ginjaninja78/sheetops/internal/validation"
	"github.com/ginjaninja78/sheetops/pkg/utils"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig loads --config, or the defaults when it is not set, and
// applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if flags.Changed("preview") {
		c.PreviewRows = previewRows
	}
	if flags.Changed("format") {
		c.OutputFormat = strings.ToLower(format)
	}
	if flags.Changed("workers") {
		c.Workers = workers
	}
	if flags.Changed("locale") {
		c.Locale = locale
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// RUNNING JOBS
// =============================================================================

// runSingle runs one job built from command-line flags. Without --output
// the result is written to the configured output directory, or the current
// directory, under the mode's default name.
func runSingle(cmd *cobra.Command, job config.Job) error {
	job.Name = job.Mode
	if output != "" {
		job.Output = output
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	cfg.Jobs = []config.Job{job}

	_, err := runJobs(cmd, nil)
	return err
}

// runJobs runs the configured jobs, previews every result and prints where
// each one was written.
func runJobs(cmd *cobra.Command, only []string) (utils.ProcessingSummary, error) {
	runner := pipeline.New(cfg, logger)
	results, summary, err := runner.Run(cmd.Context(), only...)

	out := cmd.OutOrStdout()
	for _, res := range results {
		if err := printResult(out, res); err != nil {
			return summary, err
		}
	}
	return summary, err
}

// printResult previews one job result.
func printResult(w io.Writer, res pipeline.JobResult) error {
	if len(cfg.Jobs) > 1 {
		fmt.Fprintf(w, "=== %s (%s) ===\n", res.Job.Name, res.Result.Mode)
	}

	if len(res.Warnings) > 0 {
		fmt.Fprint(w, validation.FormatErrors(res.Warnings))
	}

	if res.Result.NoResults {
		if err := preview.NoResults(w, string(res.Result.Mode)); err != nil {
			return err
		}
	}
	if !res.Result.Table.IsEmpty() {
		opts := preview.Options{Rows: cfg.PreviewRows, Color: !noColor}
		if err := preview.Render(w, res.Result.Table, res.Result, opts); err != nil {
			return err
		}
	}

	if res.OutputFile != "" {
		fmt.Fprintf(w, "Wrote %d row(s) to %s\n", res.Result.Stats.RowsOut, res.OutputFile)
	}
	return nil
}

// =============================================================================
// FLAG PARSING
// =============================================================================

// parseDatePair parses "start:end[:startCalendar[:endCalendar]]". The
// start calendar defaults to local; the end calendar defaults to the start
// calendar.
func parseDatePair(s string) (types.DatePairSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return types.DatePairSpec{}, fmt.Errorf("date pair %q: want start:end[:startCalendar[:endCalendar]]", s)
	}

	spec := types.DatePairSpec{
		StartColumn:   strings.TrimSpace(parts[0]),
		EndColumn:     strings.TrimSpace(parts[1]),
		StartCalendar: types.CalendarLocal,
	}
	if spec.StartColumn == "" || spec.EndColumn == "" {
		return types.DatePairSpec{}, fmt.Errorf("date pair %q: column names must not be empty", s)
	}

	if len(parts) > 2 {
		cal, err := types.ParseCalendar(parts[2])
		if err != nil {
			return types.DatePairSpec{}, fmt.Errorf("date pair %q: %w", s, err)
		}
		spec.StartCalendar = cal
	}
	spec.EndCalendar = spec.StartCalendar
	if len(parts) > 3 {
		cal, err := types.ParseCalendar(parts[3])
		if err != nil {
			return types.DatePairSpec{}, fmt.Errorf("date pair %q: %w", s, err)
		}
		spec.EndCalendar = cal
	}
	return spec, nil
}

// parseComparePair parses "left:right", or a single column name used on
// both sides.
func parseComparePair(s string) (types.ComparisonPairSpec, error) {
	left, right, found := strings.Cut(s, ":")
	if !found {
		right = left
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if left == "" || right == "" {
		return types.ComparisonPairSpec{}, fmt.Errorf("compare pair %q: want left:right or a column name", s)
	}
	return types.ComparisonPairSpec{LeftColumn: left, RightColumn: right}, nil
}

// source builds a Source from a file flag and a sheet flag.
func source(file, sheet string) config.Source {
	return config.Source{File: file, Sheet: sheet}
}
