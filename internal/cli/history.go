package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List locally stored analysis reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if History == nil {
			return fmt.Errorf("history store not initialized (history may be disabled)")
		}

		records, err := History.List()
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No stored reports. Run 'pbmctl analyze <file>' to create one.")
			return nil
		}

		fmt.Printf("%-36s  %-7s  %-20s  %s\n", "ID", "GRADE", "CREATED", "FILE")
		for _, r := range records {
			fmt.Printf("%-36s  %-7s  %-20s  %s\n",
				r.ID, r.Grade, r.Created.Format("2006-01-02 15:04 UTC"), r.FileName)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored analysis report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if History == nil {
			return fmt.Errorf("history store not initialized (history may be disabled)")
		}

		record, err := History.Get(args[0])
		if err != nil {
			return fmt.Errorf("loading history record: %w", err)
		}

		fmt.Println(renderReport(record.Report, record.DownloadURL, "", ""))
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
