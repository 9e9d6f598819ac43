// =============================================================================
// sheetops - Operation Commands
// =============================================================================
//
// This file defines one command per operation. Each builds a single job
// from its flags and runs it the same way 'run' does.
//
// COMMAND USAGE:
//   sheetops calculate --input f [--sheet s] --pair start:end[:startCal[:endCal]]...
//   sheetops merge     --left a --right b --left-key k1 --right-key k2
//   sheetops group     --input f --key k
//   sheetops compare   --left a --right b --left-key k1 --right-key k2 --pair c1:c2...
//
// Calendars are "local" (Jalali, the default) or "standard" (Gregorian).
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/internal/config"
	"github.com/ginjaninja78/sheetops/internal/types"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputFile  string
	inputSheet string
	leftFile   string
	leftSheet  string
	rightFile  string
	rightSheet string
	leftKey    string
	rightKey   string
	groupKey   string
	pairs      []string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Compute day differences between date columns",
	Long: `For every row and every date pair, calculate adds a column named
"start_to_end" holding the number of days from start to end. Rows with an
unparseable date get "invalid date"; rows with a valid start and an empty end
get "no end date".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		job := config.Job{Mode: "calculate", Input: source(inputFile, inputSheet)}
		for _, p := range pairs {
			spec, err := parseDatePair(p)
			if err != nil {
				return err
			}
			job.DatePairs = append(job.DatePairs, spec)
		}
		return runSingle(cmd, job)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join two tables on a key column",
	Long: `merge emits every left row once per right row with the same key value,
with the right row's columns (except its key) added. Left rows without a
match are kept unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd, config.Job{
			Mode:  "merge",
			Left:  source(leftFile, leftSheet),
			Right: source(rightFile, rightSheet),
			Join:  types.JoinKeySpec{LeftKey: leftKey, RightKey: rightKey},
		})
	},
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "List records whose key value repeats",
	Long: `group keeps only the rows whose key value occurs more than once and
sorts them by key, so duplicates sit next to each other.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd, config.Job{
			Mode:  "group",
			Input: source(inputFile, inputSheet),
			Key:   groupKey,
		})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare columns of two tables matched by key",
	Long: `compare matches every left row to the right row with the same key value
and, for every pair, adds the right value as "(file2) column". The
differences_summary column says whether any pair differed; differing cells
are highlighted in the preview and in XLSX output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		job := config.Job{
			Mode:  "compare",
			Left:  source(leftFile, leftSheet),
			Right: source(rightFile, rightSheet),
			Join:  types.JoinKeySpec{LeftKey: leftKey, RightKey: rightKey},
		}
		for _, p := range pairs {
			spec, err := parseComparePair(p)
			if err != nil {
				return err
			}
			job.ComparePairs = append(job.ComparePairs, spec)
		}
		return runSingle(cmd, job)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	for _, c := range []*cobra.Command{calculateCmd, groupCmd} {
		c.Flags().StringVarP(&inputFile, "input", "i", "", "Input XLSX or CSV file")
		c.Flags().StringVar(&inputSheet, "sheet", "", "Worksheet to read (default: the first)")
		c.MarkFlagRequired("input")
	}
	for _, c := range []*cobra.Command{mergeCmd, compareCmd} {
		c.Flags().StringVar(&leftFile, "left", "", "First input file")
		c.Flags().StringVar(&leftSheet, "left-sheet", "", "Worksheet of the first file")
		c.Flags().StringVar(&rightFile, "right", "", "Second input file")
		c.Flags().StringVar(&rightSheet, "right-sheet", "", "Worksheet of the second file")
		c.Flags().StringVar(&leftKey, "left-key", "", "Key column of the first file")
		c.Flags().StringVar(&rightKey, "right-key", "", "Key column of the second file")
		c.MarkFlagRequired("left")
		c.MarkFlagRequired("right")
	}

	calculateCmd.Flags().StringArrayVarP(&pairs, "pair", "p", nil, "Date pair start:end[:startCalendar[:endCalendar]] (repeatable)")
	compareCmd.Flags().StringArrayVarP(&pairs, "pair", "p", nil, "Column pair left:right, or one name for both (repeatable)")
	groupCmd.Flags().StringVarP(&groupKey, "key", "k", "", "Key column")

	rootCmd.AddCommand(calculateCmd, mergeCmd, groupCmd, compareCmd)
}
