// Package report renders the synthesis outcome: a machine-readable summary
// plus a markdown document built from fixed section templates. The builder
// has no conditional logic beyond "print None when a section is empty".
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/codelens/driftscan/internal/synthesis"
	"github.com/codelens/driftscan/internal/types"
)

// Build produces the final report for one synthesis outcome.
func Build(out *synthesis.Outcome, scanID string, generatedAt time.Time) *types.Report {
	critical := 0
	for _, item := range out.WorkItems {
		if item.Severity == types.SeverityCritical {
			critical++
		}
	}

	summary := types.ReportSummary{
		DriftCount:    len(out.Drift),
		GapCount:      len(out.Gaps),
		WorkItemCount: len(out.WorkItems),
		CriticalCount: critical,
		AlignedCount:  len(out.CrossRef.Aligned),
	}

	return &types.Report{
		Summary:     summary,
		Markdown:    renderMarkdown(out, summary, scanID, generatedAt),
		GeneratedAt: generatedAt,
	}
}

func renderMarkdown(out *synthesis.Outcome, summary types.ReportSummary, scanID string, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Drift Report\n\n")
	fmt.Fprintf(&b, "Scan: %s  \nGenerated: %s\n\n", scanID, generatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "- Drift findings: %d\n", summary.DriftCount)
	fmt.Fprintf(&b, "- Gaps: %d\n", summary.GapCount)
	fmt.Fprintf(&b, "- Work items: %d\n", summary.WorkItemCount)
	fmt.Fprintf(&b, "- Critical items: %d\n", summary.CriticalCount)
	fmt.Fprintf(&b, "- Aligned features: %d\n\n", summary.AlignedCount)

	b.WriteString("## Drift Analysis\n\n")
	writeFindings(&b, out.Drift)

	b.WriteString("## Gap Analysis\n\n")
	writeFindings(&b, out.Gaps)

	b.WriteString("## Cross-Reference Analysis\n\n")
	writeCrossRef(&b, out.CrossRef)

	b.WriteString("## Reconstruction Plan\n\n")
	writeBucket(&b, "Immediate", out.Plan.Immediate)
	writeBucket(&b, "Short-term", out.Plan.ShortTerm)
	writeBucket(&b, "Medium-term", out.Plan.MediumTerm)
	writeBucket(&b, "Backlog", out.Plan.Backlog)

	return b.String()
}

func writeFindings(b *strings.Builder, findings []types.Finding) {
	if len(findings) == 0 {
		b.WriteString("None\n\n")
		return
	}
	for _, f := range findings {
		fmt.Fprintf(b, "- **%s** (%s): %s\n", f.Type, f.Severity, f.Description)
		if f.Impact != "" {
			fmt.Fprintf(b, "  - Impact: %s\n", f.Impact)
		}
		if f.Recommendation != "" {
			fmt.Fprintf(b, "  - Recommendation: %s\n", f.Recommendation)
		}
		if len(f.AffectedItems) > 0 {
			fmt.Fprintf(b, "  - Affected: %s\n", strings.Join(f.AffectedItems, ", "))
		}
	}
	b.WriteString("\n")
}

func writeCrossRef(b *strings.Builder, xref synthesis.CrossRefResult) {
	if len(xref.Aligned) == 0 && len(xref.DocumentedNotImplemented) == 0 && len(xref.ImplementedNotDocumented) == 0 {
		b.WriteString("None\n\n")
		return
	}
	fmt.Fprintf(b, "- Aligned: %s\n", listOrNone(xref.Aligned))
	fmt.Fprintf(b, "- Documented but not implemented: %s\n", listOrNone(xref.DocumentedNotImplemented))
	fmt.Fprintf(b, "- Implemented but not documented: %s\n", listOrNone(xref.ImplementedNotDocumented))
	b.WriteString("\n")
}

func writeBucket(b *strings.Builder, name string, items []types.WorkItem) {
	fmt.Fprintf(b, "### %s\n\n", name)
	if len(items) == 0 {
		b.WriteString("None\n\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s (%s, score %d)\n", i+1, item.Title, item.Severity, item.Priority)
	}
	b.WriteString("\n")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
