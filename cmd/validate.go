// =============================================================================
// sheetops - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a configuration
// file without running any job.
//
// COMMAND USAGE:
//   sheetops validate --config jobs.yaml
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return errors.New("validate needs a configuration file (--config)")
		}

		// The configuration was loaded and validated before this runs.
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration %s is valid.\n", cfgFile)
		for _, job := range cfg.Jobs {
			fmt.Fprintf(out, "  %-20s %s\n", job.Name, job.Mode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
