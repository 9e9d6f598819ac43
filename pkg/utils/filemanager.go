// =============================================================================
// sheetops - File Manager Utility
// =============================================================================
//
// This module provides file utilities for the CLI and the pipeline:
//   - Output file naming from a placeholder format
//   - Directory management
//   - The processing summary written after a run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     plus one {key} for every entry of params.
//   - ext: The extension to ensure, without the dot (e.g. "xlsx").
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name. Path separators in substituted values are
//     replaced with "_".
//
// EXAMPLE:
//
//	format: "{job}_{timestamp}"
//	params: {"job": "tenure"}
//	output: "tenure_20240115_143022.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	pairs := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", sanitize(value))
	}

	result := strings.NewReplacer(pairs...).Replace(format)
	if result == "" {
		result = "output"
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+strings.ToLower(ext)) {
		result += "." + ext
	}

	return result
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_").Replace(s)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a run.
type ProcessingSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Jobs      []JobSummary
}

// JobSummary describes one finished or failed job.
type JobSummary struct {
	Name       string
	Mode       string
	Inputs     []string
	OutputFile string
	RowsIn     int
	RowsOut    int
	NoResults  bool
	Duration   time.Duration
	Error      string
}

// Failed returns the number of failed jobs.
func (s ProcessingSummary) Failed() int {
	n := 0
	for _, j := range s.Jobs {
		if j.Error != "" {
			n++
		}
	}
	return n
}

// WriteSummary writes a processing summary to w.
func WriteSummary(w io.Writer, summary ProcessingSummary) error {
	writer := bufio.NewWriter(w)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "sheetops - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Jobs:     %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		len(summary.Jobs),
		len(summary.Jobs)-summary.Failed(),
		summary.Failed(),
	)

	if len(summary.Jobs) > 0 {
		writer.WriteString("Jobs:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
	}
	for _, job := range summary.Jobs {
		fmt.Fprintf(writer, "  Job:          %s (%s)\n", job.Name, job.Mode)
		if len(job.Inputs) > 0 {
			fmt.Fprintf(writer, "  Inputs:       %s\n", strings.Join(job.Inputs, ", "))
		}
		if job.Error != "" {
			fmt.Fprintf(writer, "  Error:        %s\n\n", job.Error)
			continue
		}
		if job.OutputFile != "" {
			fmt.Fprintf(writer, "  Output:       %s\n", job.OutputFile)
		}
		fmt.Fprintf(writer, "  Rows:         %d in, %d out\n", job.RowsIn, job.RowsOut)
		if job.NoResults {
			writer.WriteString("  Result:       no results\n")
		}
		fmt.Fprintf(writer, "  Process Time: %s\n\n", job.Duration.String())
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteSummaryFile writes a summary file into dir and returns its path.
func WriteSummaryFile(dir string, summary ProcessingSummary) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, GenerateOutputFileName("processing_summary_{timestamp}", "txt", nil))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	if err := WriteSummary(file, summary); err != nil {
		return "", err
	}
	return path, nil
}
