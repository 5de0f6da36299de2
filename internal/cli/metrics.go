package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var metricsDays int

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show local usage metrics derived from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		since := time.Now().UTC().AddDate(0, 0, -metricsDays)
		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		fmt.Printf("Metrics for the last %d day(s):\n\n", metricsDays)
		fmt.Printf("  Analyses started:   %d\n", m.AnalysesStarted)
		fmt.Printf("  Analyses completed: %d\n", m.AnalysesCompleted)
		fmt.Printf("  Analyses failed:    %d\n", m.AnalysesFailed)
		fmt.Printf("  Reports unlocked:   %d\n", m.ReportsUnlocked)
		fmt.Printf("  Reports downloaded: %d\n", m.ReportsDownloaded)
		fmt.Printf("  Knowledge updates:  %d\n", m.KnowledgeUpdates)
		fmt.Printf("  Events recorded:    %d\n", m.EventCount)

		if len(m.GradeCounts) > 0 {
			grades := make([]string, 0, len(m.GradeCounts))
			for g := range m.GradeCounts {
				grades = append(grades, g)
			}
			sort.Strings(grades)
			fmt.Println("\n  Grades received:")
			for _, g := range grades {
				fmt.Printf("    %s: %d\n", g, m.GradeCounts[g])
			}
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().IntVar(&metricsDays, "days", 7, "time window in days")
	rootCmd.AddCommand(metricsCmd)
}
