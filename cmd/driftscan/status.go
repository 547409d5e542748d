package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current scan state",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}

		st, err := state.NewStore(root).Load()
		if err != nil {
			return err
		}
		gray := color.New(color.FgHiBlack).SprintFunc()
		if st == nil {
			fmt.Println(gray("No scan has been run. Try: driftscan scan"))
			return nil
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("%s\n", cyan("=== Scan "+st.ID+" ==="))
		fmt.Printf("Status:  %s\n", statusColor(st.Status))
		fmt.Printf("Phase:   %s\n", st.Phase.Current)
		fmt.Printf("Started: %s\n", st.StartedAt.Format("2006-01-02 15:04:05"))
		if st.CompletedAt != nil {
			fmt.Printf("Done:    %s\n", st.CompletedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()

		fmt.Println("Producers:")
		for _, id := range producer.SourceIDs() {
			if rec, ok := st.Producers[id]; ok {
				fmt.Printf("  %-8s %s at %s\n", id, rec.Status, rec.CompletedAt.Format("15:04:05"))
			} else {
				fmt.Printf("  %-8s %s\n", id, gray("no result"))
			}
		}
		fmt.Println()

		fmt.Println("Findings:")
		fmt.Printf("  issues: %d  docs: %d  code: %d  drift: %d  gaps: %d\n",
			len(st.Findings.Issues), len(st.Findings.Docs), len(st.Findings.Code),
			len(st.Findings.Drift), len(st.Findings.Gaps))

		if st.Report != nil {
			fmt.Printf("\nReport generated %s (%d work items, %d critical)\n",
				st.Report.GeneratedAt.Format("2006-01-02 15:04:05"),
				st.Report.Summary.WorkItemCount, st.Report.Summary.CriticalCount)
		}
		return nil
	},
}

func statusColor(s state.Status) string {
	switch s {
	case state.StatusCompleted:
		return color.New(color.FgGreen).Sprint(string(s))
	case state.StatusInProgress:
		return color.New(color.FgYellow).Sprint(string(s))
	default:
		return string(s)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
