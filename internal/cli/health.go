package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the analyzer service health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		health, err := Client.Health(ctx)
		if err != nil {
			return fmt.Errorf("checking service health: %w", err)
		}

		fmt.Printf("Status:          %s\n", health.Status)
		fmt.Printf("Active sessions: %d\n", health.SessionsActive)
		fmt.Printf("Leads captured:  %d\n", health.LeadsCaptured)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
