package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rxbench/pbmctl/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Check the status of an analysis session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		status, err := Client.Status(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetching status: %w", err)
		}

		fmt.Printf("Session:  %s\n", args[0])
		fmt.Printf("Status:   %s\n", status.Status)
		if status.StatusMessage != "" {
			fmt.Printf("Message:  %s\n", status.StatusMessage)
		}
		if !status.Status.Terminal() {
			fmt.Printf("Progress: ~%d%%\n", core.EstimateProgress(status.StatusMessage))
		}
		if status.ErrorMessage != "" {
			fmt.Printf("Error:    %s\n", status.ErrorMessage)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
