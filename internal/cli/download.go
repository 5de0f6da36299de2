package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rxbench/pbmctl/internal/observability"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <session-id>",
	Short: "Download the generated PDF report for a session",
	Long: `Download the PDF report generated for a completed, unlocked analysis
session. The report must have been unlocked with contact details first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		sessionID := args[0]
		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		var buf bytes.Buffer
		serverName, err := Client.DownloadReport(ctx, sessionID, &buf)
		if err != nil {
			return fmt.Errorf("downloading report: %w", err)
		}

		dest := downloadDest(downloadOutput, serverName)

		if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", dest, err)
		}

		observability.Record(EventLog, "INFO", observability.EventReportDownloaded,
			"report downloaded", map[string]any{"session_id": sessionID, "path": dest})

		fmt.Printf("Report saved to %s\n", dest)
		return nil
	},
}

// downloadDest picks the local write path. The server-suggested name is
// untrusted; only its base name is used, so it can never steer the write
// outside the current directory.
func downloadDest(flagValue, serverName string) string {
	if flagValue != "" {
		return flagValue
	}
	if serverName != "" {
		if base := filepath.Base(serverName); base != "." && base != string(filepath.Separator) && base != ".." {
			return base
		}
	}
	return "PBM_Analysis_Report.pdf"
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "destination file (defaults to the server-suggested name)")
	rootCmd.AddCommand(downloadCmd)
}
