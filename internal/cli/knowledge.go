package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rxbench/pbmctl/internal/observability"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect and refresh the service's PBM knowledge base",
}

var knowledgeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the knowledge base snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		status, err := Client.KnowledgeStatus(ctx)
		if err != nil {
			return fmt.Errorf("fetching knowledge status: %w", err)
		}

		fmt.Printf("Last updated:    %s\n", status.LastUpdated)
		fmt.Printf("Updates applied: %d\n", status.UpdateCount)
		fmt.Printf("Analyses:        %d\n", status.AnalysesCount)
		fmt.Printf("Legislation:     %d\n", status.LegislationCount)
		fmt.Printf("Industry trends: %d\n", status.IndustryTrendsCount)

		if len(status.RecentUpdates) > 0 {
			fmt.Println("\nRecent updates:")
			for _, update := range status.RecentUpdates {
				fmt.Printf("  %s\n", update.Timestamp)
				for _, item := range update.Updates {
					fmt.Printf("    - %s\n", item)
				}
			}
		}
		return nil
	},
}

var knowledgeUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Trigger a knowledge base refresh from public sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		result, err := Client.UpdateKnowledge(ctx)
		if err != nil {
			return fmt.Errorf("triggering knowledge update: %w", err)
		}

		observability.Record(EventLog, "INFO", observability.EventKnowledgeUpdated,
			"knowledge base updated", map[string]any{"updates_found": result.UpdatesFound})

		fmt.Printf("Update complete: %d new item(s) found.\n", result.UpdatesFound)
		return nil
	},
}

func init() {
	knowledgeCmd.AddCommand(knowledgeStatusCmd)
	knowledgeCmd.AddCommand(knowledgeUpdateCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
