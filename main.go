// =============================================================================
// sheetops - Main Entry Point
// =============================================================================
//
// This is the main entry point for the sheetops CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   sheetops run            - Run the jobs of a configuration file
//   sheetops calculate      - Day differences between date columns
//   sheetops merge          - Join two tables on a key column
//   sheetops group          - Records whose key value repeats
//   sheetops compare        - Compare columns of two tables
//   sheetops validate       - Check a configuration file
//   sheetops sheets         - List the worksheets of a workbook
//   sheetops version        - Show the sheetops build
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - configs/       : Contains example job configurations
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sheetops/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
