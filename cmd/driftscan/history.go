package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}

		arch, err := history.Open(root)
		if err != nil {
			return err
		}
		defer arch.Close()

		records, err := arch.ListScans(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No archived scans.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Scan", "Started", "Status", "Drift", "Gaps", "Items", "Critical"})
		for _, rec := range records {
			tw.AppendRow(table.Row{
				rec.ID,
				rec.StartedAt.Local().Format("2006-01-02 15:04"),
				rec.Status,
				rec.DriftCount,
				rec.GapCount,
				rec.WorkItemCount,
				rec.CriticalCount,
			})
		}
		tw.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum scans to list")
	rootCmd.AddCommand(historyCmd)
}
