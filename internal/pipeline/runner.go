// =============================================================================
// sheetops - Pipeline Module
// =============================================================================
//
// This module runs the jobs of a configuration in order. For each job it:
//   1. Loads the input tables (files, or the output of an earlier job)
//   2. Checks the job's preconditions
//   3. Runs the operation on the transform engine
//   4. Writes the result file
//
// Two-table jobs load both inputs concurrently. A job that fails stops the
// run; jobs after it are not started.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/csvparser"
	"github.com/ginjaninja78/sheetops/internal/logging"
	"github.com/ginjaninja78/sheetops/internal/sheetwriter"
	"github.com/ginjaninja78/sheetops/internal/transform"
	"github.com/ginjaninja78/sheetops/internal/types"
	"github.com/ginjaninja78/sheetops/internal/validation"
	"github.com/ginjaninja78/sheetops/internal/xlsxparser"
	"github.com/ginjaninja78/sheetops/pkg/utils"
)

// ErrUnknownJob is returned when a job name does not exist in the
// configuration.
var ErrUnknownJob = errors.New("unknown job")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// JobResult represents the outcome of one job.
type JobResult struct {
	// Job is the job configuration that was run.
	Job config.Job

	// Result is the engine result.
	Result transform.Result

	// OutputFile is the path written, or empty when nothing was written.
	OutputFile string

	// Warnings are the non-fatal precondition problems.
	Warnings []*validation.ValidationError
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner executes configured jobs.
type Runner struct {
	cfg    *config.Config
	engine *transform.Engine
	logger *slog.Logger
}

// New creates a Runner for cfg. A nil logger uses slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg: cfg,
		engine: transform.New(
			transform.WithWorkers(cfg.Workers),
			transform.WithLocale(cfg.Locale),
			transform.WithLogger(logger),
		),
		logger: logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the configured jobs in order. When only names jobs, just
// those jobs and the earlier jobs they read from are run. A job missing its
// keys or pairs stops the run before any job reads its inputs.
//
// RETURNS:
//   - The results of the jobs that completed.
//   - A summary covering every job that was started.
//   - The first job error, if any.
func (r *Runner) Run(ctx context.Context, only ...string) ([]JobResult, utils.ProcessingSummary, error) {
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	jobs, err := r.selectJobs(only)
	if err != nil {
		summary.EndTime = time.Now()
		return nil, summary, err
	}

	for _, job := range jobs {
		if err := checkStatic(job); err != nil {
			summary.Jobs = append(summary.Jobs, utils.JobSummary{
				Name:   job.Name,
				Mode:   job.Mode,
				Inputs: inputs(job),
				Error:  err.Error(),
			})
			summary.EndTime = time.Now()
			return nil, summary, fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	outputs := make(map[string]types.Table, len(jobs))
	results := make([]JobResult, 0, len(jobs))

	for _, job := range jobs {
		start := time.Now()
		res, err := r.runJob(ctx, job, outputs)

		js := utils.JobSummary{
			Name:     job.Name,
			Mode:     job.Mode,
			Inputs:   inputs(job),
			Duration: time.Since(start),
		}
		if err != nil {
			js.Error = err.Error()
			summary.Jobs = append(summary.Jobs, js)
			summary.EndTime = time.Now()
			return results, summary, fmt.Errorf("job %q: %w", job.Name, err)
		}

		js.OutputFile = res.OutputFile
		js.RowsIn = res.Result.Stats.RowsIn
		js.RowsOut = res.Result.Stats.RowsOut
		js.NoResults = res.Result.NoResults
		summary.Jobs = append(summary.Jobs, js)

		outputs[job.Name] = res.Result.Table
		results = append(results, res)
	}

	summary.EndTime = time.Now()
	return results, summary, nil
}

// selectJobs returns the jobs to run in configuration order.
func (r *Runner) selectJobs(only []string) ([]config.Job, error) {
	if len(only) == 0 {
		return r.cfg.Jobs, nil
	}

	index := make(map[string]int, len(r.cfg.Jobs))
	for i, job := range r.cfg.Jobs {
		index[job.Name] = i
	}

	want := make(map[int]bool)
	var visit func(name string) error
	visit = func(name string) error {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownJob, name)
		}
		if want[i] {
			return nil
		}
		want[i] = true
		job := r.cfg.Jobs[i]
		for _, src := range []config.Source{job.Input, job.Left, job.Right} {
			if src.From != "" {
				if err := visit(src.From); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, name := range only {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	var jobs []config.Job
	for i, job := range r.cfg.Jobs {
		if want[i] {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// checkStatic rejects a job whose configuration cannot run whatever its
// inputs hold.
func checkStatic(job config.Job) error {
	mode, err := transform.ParseMode(job.Mode)
	if err != nil {
		return err
	}
	return validation.CheckStatic(validation.Job{
		Mode:         string(mode),
		Keys:         job.Join,
		KeyColumn:    job.Key,
		DatePairs:    job.DatePairs,
		ComparePairs: job.ComparePairs,
	})
}

// runJob loads, checks, processes and writes one job.
func (r *Runner) runJob(ctx context.Context, job config.Job, outputs map[string]types.Table) (JobResult, error) {
	res := JobResult{Job: job}

	mode, err := transform.ParseMode(job.Mode)
	if err != nil {
		return res, err
	}
	logger := logging.WithJob(r.logger, job.Name, string(mode))
	logger.Info("Running job", "inputs", strings.Join(inputs(job), ", "))

	left, right, err := r.loadInputs(ctx, job, mode, outputs)
	if err != nil {
		return res, err
	}

	warnings, err := validation.Check(validation.Job{
		Mode:         string(mode),
		Left:         left,
		Right:        right,
		Keys:         job.Join,
		KeyColumn:    job.Key,
		DatePairs:    job.DatePairs,
		ComparePairs: job.ComparePairs,
	})
	for _, w := range warnings {
		logger.Warn("Precondition warning", "field", w.Field, "message", w.Message)
	}
	res.Warnings = warnings
	if err != nil {
		return res, err
	}

	var result transform.Result
	switch mode {
	case transform.ModeCalculate:
		result, err = r.engine.Calculate(ctx, *left, job.DatePairs)
	case transform.ModeMerge:
		result, err = r.engine.Merge(ctx, *left, *right, job.Join)
	case transform.ModeGroup:
		result, err = r.engine.Group(ctx, *left, job.Key)
	case transform.ModeCompare:
		result, err = r.engine.Compare(ctx, *left, *right, job.Join, job.ComparePairs)
	}
	if err != nil {
		return res, err
	}
	res.Result = result

	if result.NoResults {
		logger.Info("No results", "rows_in", result.Stats.RowsIn)
	}

	path, err := r.writeOutput(job, mode, result, logger)
	if err != nil {
		return res, err
	}
	res.OutputFile = path

	logger.Info("Job complete",
		"rows_in", result.Stats.RowsIn,
		"rows_out", result.Stats.RowsOut,
		"duration", result.Stats.Duration,
	)
	return res, nil
}

// =============================================================================
// INPUT LOADING
// =============================================================================

// loadInputs loads the tables a job reads. A table is nil when its source
// is unset; the precondition check reports that.
func (r *Runner) loadInputs(ctx context.Context, job config.Job, mode transform.Mode, outputs map[string]types.Table) (*types.Table, *types.Table, error) {
	if !mode.TwoTables() {
		left, err := r.load(job.Primary(), outputs)
		return left, nil, err
	}

	var left, right *types.Table
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := r.load(job.Left, outputs)
		left = t
		return err
	})
	g.Go(func() error {
		t, err := r.load(job.Right, outputs)
		right = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// load reads one source. CSV files are chosen by extension; anything else
// is read as a workbook.
func (r *Runner) load(src config.Source, outputs map[string]types.Table) (*types.Table, error) {
	if src.IsZero() {
		return nil, nil
	}

	if src.From != "" {
		t, ok := outputs[src.From]
		if !ok {
			return nil, fmt.Errorf("%w: %q has not run before this job", ErrUnknownJob, src.From)
		}
		out := t.Clone()
		return &out, nil
	}

	var (
		t   types.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(src.File)) {
	case ".csv":
		t, err = csvparser.ReadFile(src.File, r.cfg.CSVSettings)
	default:
		t, err = xlsxparser.ReadFile(src.File, xlsxparser.Options{Sheet: src.Sheet})
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Loaded table", "source", src.String(), "rows", t.Len(), "columns", len(t.Columns()))
	return &t, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// writeOutput writes the result table. The path is the job's output, or a
// generated name in the output directory. Nothing is written when neither
// is set or the table is empty.
func (r *Runner) writeOutput(job config.Job, mode transform.Mode, result transform.Result, logger *slog.Logger) (string, error) {
	format := OutputFormat(job, r.cfg)

	path := job.Output
	if path == "" {
		if r.cfg.OutputDir == "" {
			return "", nil
		}
		path = filepath.Join(r.cfg.OutputDir, r.generateOutputFileName(job, mode, format))
	}

	if result.Table.IsEmpty() {
		logger.Info("Nothing to write", "output", path)
		return "", nil
	}

	if err := sheetwriter.WriteFile(path, format, job.Name, result.Table, result); err != nil {
		return "", err
	}

	logger.Info("Wrote output", "output", path, "format", format)
	return path, nil
}

// generateOutputFileName fills the configured file name format for job.
func (r *Runner) generateOutputFileName(job config.Job, mode transform.Mode, format string) string {
	return utils.GenerateOutputFileName(r.cfg.FileNameFormat, sheetwriter.Extension(format), map[string]string{
		"name": sheetwriter.DefaultName(string(mode)),
		"mode": string(mode),
		"job":  job.Name,
	})
}

// OutputFormat resolves the format a job writes: the job's format, else
// the output path's extension, else the global format.
func OutputFormat(job config.Job, cfg *config.Config) string {
	if job.Format != "" {
		return job.Format
	}
	if job.Output != "" {
		if f := sheetwriter.FormatFromPath(job.Output); f != "" {
			return f
		}
	}
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return sheetwriter.FormatXLSX
}

// inputs describes the sources of job.
func inputs(job config.Job) []string {
	var out []string
	for _, src := range []config.Source{job.Input, job.Left, job.Right} {
		if !src.IsZero() {
			out = append(out, src.String())
		}
	}
	return out
}
