// =============================================================================
// sheetops - Run Command
// =============================================================================
//
// This file defines the 'run' command, which executes the jobs listed in a
// configuration file.
//
// COMMAND USAGE:
//   sheetops run --config jobs.yaml [flags]
//
// FLAGS:
//   --job      : Run only the named job (repeatable). Jobs it reads from
//                run as well.
//   --summary  : Write a processing summary file to the output directory
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. For each job, in order:
//      a. Load its inputs (files, or the output of an earlier job)
//      b. Check its preconditions
//      c. Run the operation
//      d. Write the result file
//   3. Preview each result
//   4. Optionally write a summary report
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// jobNames limits the run to these jobs.
var jobNames []string

// writeSummary writes a summary file after the run.
var writeSummary bool

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobs of a configuration file",
	Long: `The run command executes the jobs listed in the configuration file in
order. A job input is either a file or the output of an earlier job, so a
merged table can be fed straight into a date calculation.

A failing job stops the run. Jobs that found nothing (no duplicates, no
matching keys) are reported as having no results and do not fail the run.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return errors.New("run needs a configuration file (--config)")
		}
		if len(cfg.Jobs) == 0 {
			return errors.New("the configuration lists no jobs")
		}
		if output != "" {
			cfg.OutputDir = output
		}

		summary, err := runJobs(cmd, jobNames)

		if writeSummary {
			dir := cfg.OutputDir
			if dir == "" {
				dir = "."
			}
			path, serr := utils.WriteSummaryFile(dir, summary)
			if serr != nil {
				logger.Error("Failed to write summary", "error", serr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", path)
			}
		}

		return err
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&jobNames, "job", nil, "Run only this job (repeatable)")
	runCmd.Flags().BoolVar(&writeSummary, "summary", false, "Write a processing summary file")
}
