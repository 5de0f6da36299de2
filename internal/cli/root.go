package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pbmctl",
	Short: "pbmctl - terminal client for the PBM Contract Analyzer",
	Long: `pbmctl submits pharmacy benefit manager (PBM) contracts to the analyzer
service and walks you through the full workflow: upload a document, watch
the asynchronous analysis, unlock the structured report with your contact
details, and view or download the result.

It also exposes the service's knowledge base, health, and leads endpoints,
keeps a local history of unlocked reports, and can serve the same operations
as MCP tools for AI assistants.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pbmctl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
