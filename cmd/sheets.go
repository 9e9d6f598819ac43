// =============================================================================
// sheetops - Sheets Command
// =============================================================================
//
// 'sheets' lists the worksheets of an XLSX workbook, so the right name can
// be passed to --sheet or put in a job's "sheet" field.
//
// COMMAND USAGE:
//   sheetops sheets staff.xlsx
//
// OUTPUT:
//   1  Staff
//   2  Contracts
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/internal/xlsxparser"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets FILE",
	Short: "List the worksheets of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := xlsxparser.SheetNames(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, name := range names {
			fmt.Fprintf(out, "%d  %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}
