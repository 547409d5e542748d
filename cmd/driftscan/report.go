package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/history"
	"github.com/codelens/driftscan/internal/state"
)

var reportScanID string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a scan's markdown report",
	Long: `Print the latest scan's markdown report, or an archived one with --scan.

Useful for piping: driftscan report > DRIFT_REPORT.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}

		if reportScanID != "" {
			arch, err := history.Open(root)
			if err != nil {
				return err
			}
			defer arch.Close()

			md, err := arch.ReportFor(cmd.Context(), reportScanID)
			if err != nil {
				return err
			}
			fmt.Print(md)
			return nil
		}

		st, err := state.NewStore(root).Load()
		if err != nil {
			return err
		}
		if st == nil || st.Report == nil {
			return fmt.Errorf("no report available; run: driftscan scan")
		}
		fmt.Print(st.Report.Markdown)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportScanID, "scan", "", "print the archived report for this scan ID")
	rootCmd.AddCommand(reportCmd)
}
