// =============================================================================
// sheetops - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sheetops)
//   ├── runCmd       (sheetops run)        run the jobs of a config file
//   ├── calculateCmd (sheetops calculate)  date differences
//   ├── mergeCmd     (sheetops merge)      join two tables
//   ├── groupCmd     (sheetops group)      duplicate records
//   ├── compareCmd   (sheetops compare)    compare two tables
//   ├── validateCmd  (sheetops validate)   check a config file
//   ├── sheetsCmd    (sheetops sheets)     list the worksheets of a workbook
//   └── versionCmd   (sheetops version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (e.g., --config, --verbose)
//   2. Loading the configuration and applying flag overrides
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. When empty the
// built-in defaults are used.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat overrides the configured log format ("text" or "json").
var logFormat string

// previewRows overrides the number of rows shown in the preview.
var previewRows int

// noColor disables highlighting in the preview.
var noColor bool

// output is the output file for single-job commands, or the output
// directory for 'run'.
var output string

// format overrides the output format.
var format string

// workers overrides the number of worker goroutines.
var workers int

// locale overrides the collation locale.
var locale string

// cfg is the loaded configuration, set before any command runs.
var cfg *config.Config

// logger is the configured logger, set before any command runs.
var logger *slog.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sheetops",
	Short: "sheetops - date differences, joins, duplicates and comparisons for spreadsheets",
	Long: `sheetops processes tables read from XLSX or CSV files.

Operations:
  - calculate: day differences between date columns (Jalali or Gregorian)
  - merge:     join two tables on a key column
  - group:     rows whose key value repeats, sorted by key
  - compare:   compare columns of two tables matched by key

Results are previewed in the terminal and written as XLSX, CSV, JSON, XML
or SQLite.

Example Usage:
  sheetops run --config jobs.yaml
  sheetops calculate --input staff.xlsx --pair hired:left
  sheetops merge --left a.xlsx --right b.csv --left-key id --right-key emp_id
  sheetops group --input staff.xlsx --key national_id
  sheetops compare --left old.xlsx --right new.xlsx --left-key id --right-key id --pair price`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.Setup(level, cfg.LogFormat)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Path to the YAML configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	flags.IntVar(&previewRows, "preview", 0, "Number of result rows to preview (default from config, 100)")
	flags.BoolVar(&noColor, "no-color", false, "Do not highlight differing cells in the preview")
	flags.StringVarP(&output, "output", "o", "", "Output file, or output directory for 'run'")
	flags.StringVarP(&format, "format", "f", "", "Output format: xlsx, csv, json or sqlite")
	flags.IntVar(&workers, "workers", 0, "Worker goroutines for row processing (default: number of CPUs)")
	flags.StringVar(&locale, "locale", "", "Locale used to sort duplicate groups (BCP 47, e.g. fa)")
}
