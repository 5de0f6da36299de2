package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	leadsExportKey    string
	leadsExportOutput string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Lead-capture administration commands",
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all captured leads as CSV",
	Long: `Download all captured leads as a CSV file. The export is protected by the
service's export key, passed with --key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Client == nil {
			return fmt.Errorf("analyzer client not initialized")
		}
		if leadsExportKey == "" {
			return fmt.Errorf("--key is required")
		}

		dest := leadsExportOutput
		if dest == "" {
			dest = fmt.Sprintf("pbm_leads_%s.csv", time.Now().UTC().Format("20060102"))
		}

		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("creating %s: %w", dest, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), Config.Service.Timeout)
		defer cancel()

		if err := Client.ExportLeads(ctx, leadsExportKey, f); err != nil {
			f.Close()
			_ = os.Remove(dest)
			return fmt.Errorf("exporting leads: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}

		fmt.Printf("Leads exported to %s\n", dest)
		return nil
	},
}

func init() {
	leadsExportCmd.Flags().StringVar(&leadsExportKey, "key", "", "export secret key")
	leadsExportCmd.Flags().StringVarP(&leadsExportOutput, "output", "o", "", "destination file")
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
