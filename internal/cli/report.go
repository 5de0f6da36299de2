package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rxbench/pbmctl/internal/core"
	"github.com/rxbench/pbmctl/internal/observability"
	"github.com/rxbench/pbmctl/pkg/models"
)

var reportContact models.ContactInfo

// reportCmd is the non-interactive counterpart of the analyze TUI's contact
// gate: it submits the contact record for a completed session and prints the
// unlocked report.
var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Unlock and print the report for a completed analysis",
	Long: `Submit the contact details that unlock the report for a completed
analysis session, print the structured result, and store it in the local
history. All five contact fields are required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}

		if errs := core.ValidateContact(reportContact); len(errs) > 0 {
			fields := make([]string, 0, len(errs))
			for field, msg := range errs {
				fields = append(fields, fmt.Sprintf("--%s: %s", flagName(field), msg))
			}
			sort.Strings(fields)
			return fmt.Errorf("invalid contact details:\n  %s", strings.Join(fields, "\n  "))
		}

		sessionID := args[0]
		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		resp, err := Client.SubmitContact(ctx, sessionID, reportContact)
		if err != nil {
			return fmt.Errorf("unlocking report: %w", err)
		}

		observability.Record(EventLog, "INFO", observability.EventReportUnlocked,
			"report unlocked", map[string]any{
				"session_id": sessionID,
				"grade":      resp.Analysis.OverallGrade,
			})

		historyID := ""
		historyErr := ""
		if History != nil {
			id, err := History.Add(models.HistoryRecord{
				SessionID:   sessionID,
				Grade:       resp.Analysis.OverallGrade,
				DownloadURL: resp.DownloadURL,
				Report:      resp.Analysis,
			})
			if err != nil {
				historyErr = err.Error()
			} else {
				historyID = id
			}
		}

		fmt.Println(renderReport(resp.Analysis, resp.DownloadURL, historyID, historyErr))
		return nil
	},
}

// flagName maps a validation field key to its CLI flag.
func flagName(field string) string {
	switch field {
	case "first_name":
		return "first-name"
	case "last_name":
		return "last-name"
	default:
		return field
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportContact.FirstName, "first-name", "", "contact first name")
	reportCmd.Flags().StringVar(&reportContact.LastName, "last-name", "", "contact last name")
	reportCmd.Flags().StringVar(&reportContact.Email, "email", "", "contact email address")
	reportCmd.Flags().StringVar(&reportContact.Phone, "phone", "", "contact phone number")
	reportCmd.Flags().StringVar(&reportContact.Company, "company", "", "contact company")
	rootCmd.AddCommand(reportCmd)
}
