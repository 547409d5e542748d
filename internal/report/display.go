package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/codelens/driftscan/internal/types"
)

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgRed),
	types.SeverityMedium:   color.New(color.FgYellow),
	types.SeverityLow:      color.New(color.FgCyan),
}

// Display writes a terminal rendering of the report: colored summary
// counts followed by one table per plan bucket.
func Display(w io.Writer, rep *types.Report, plan types.Plan) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Drift Report")
	fmt.Fprintf(w, "Generated: %s\n\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(w, "Drift findings: %d   Gaps: %d   Work items: %d   ",
		rep.Summary.DriftCount, rep.Summary.GapCount, rep.Summary.WorkItemCount)
	if rep.Summary.CriticalCount > 0 {
		severityColors[types.SeverityCritical].Fprintf(w, "Critical: %d", rep.Summary.CriticalCount)
	} else {
		fmt.Fprintf(w, "Critical: 0")
	}
	fmt.Fprintf(w, "   Aligned: %d\n\n", rep.Summary.AlignedCount)

	displayBucket(w, "Immediate", plan.Immediate)
	displayBucket(w, "Short-term", plan.ShortTerm)
	displayBucket(w, "Medium-term", plan.MediumTerm)
	displayBucket(w, "Backlog", plan.Backlog)
}

func displayBucket(w io.Writer, name string, items []types.WorkItem) {
	color.New(color.Bold).Fprintf(w, "%s\n", name)
	if len(items) == 0 {
		fmt.Fprintln(w, "  None")
		fmt.Fprintln(w)
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Title", "Severity", "Score", "Type"})
	for i, item := range items {
		tw.AppendRow(table.Row{i + 1, item.Title, colorSeverity(item.Severity), item.Priority, item.Type})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func colorSeverity(s types.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}
