// =============================================================================
// sheetops - Version Command
// =============================================================================
//
// 'version' reports which build of sheetops is running and what it can
// write, so a bug report carries everything needed to reproduce a job.
//
// COMMAND USAGE:
//   sheetops version [--short]
//
// OUTPUT:
//   sheetops 1.2.0
//     built:   2026-10-18
//     go:      go1.24.11
//     outputs: xlsx, csv, json, xml, sqlite
//
// Release builds stamp Version and BuildDate through ldflags:
//   -X 'github.com/ginjaninja78/sheetops/cmd.Version=1.2.0'
//   -X 'github.com/ginjaninja78/sheetops/cmd.BuildDate=2026-10-18'
// A 'go install' build falls back to the module version it was built from.
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheetops/internal/sheetwriter"
)

var (
	// Version is the release this binary was built from.
	Version = ""

	// BuildDate is when the binary was built.
	BuildDate = "unknown"
)

// versionShort prints only the version string.
var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the sheetops build",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			_, err := fmt.Fprintln(out, buildVersion())
			return err
		}

		_, err := fmt.Fprintf(out, "sheetops %s\n  built:   %s\n  go:      %s\n  outputs: %s\n",
			buildVersion(), BuildDate, runtime.Version(), strings.Join(sheetwriter.Formats, ", "))
		return err
	},
}

// buildVersion returns Version, or the main module version recorded in the
// binary when no version was stamped.
func buildVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version")
	rootCmd.AddCommand(versionCmd)
}
