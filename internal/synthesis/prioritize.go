package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

// Score computes a work item's priority:
//
//	severityBase + categoryWeight + securityBoost
//
// severityBase uses the single canonical table on types.Severity (critical
// 10, high 8, medium 5, low 2). categoryWeight is the configured weight for
// the item's category, 0 if none. Security items get the security weight
// added a second time.
func Score(severity types.Severity, category string, weights settings.Weights) int {
	score := severity.Base() + weights.For(category)
	if isSecurity(category) {
		score += weights.Security
	}
	return score
}

func isSecurity(category string) bool {
	return strings.EqualFold(category, "security")
}

// Prioritize projects drift findings, gap findings, and raw tracked issues
// into scored work items, sorted descending by score. The sort is stable:
// ties keep discovery order (drift, then gaps, then tracked issues).
func Prioritize(drift, gaps []types.Finding, tracked *producer.Categorized, weights settings.Weights) []types.WorkItem {
	var items []types.WorkItem

	for _, f := range drift {
		items = append(items, types.WorkItem{
			Type:           types.WorkDriftCorrection,
			Title:          driftTitle(f),
			Priority:       Score(f.Severity, f.Category, weights),
			Severity:       f.Severity,
			Category:       f.Category,
			Recommendation: f.Recommendation,
			Impact:         f.Impact,
			SourceRef:      "drift:" + f.Type,
		})
	}

	for _, f := range gaps {
		items = append(items, types.WorkItem{
			Type:           types.WorkGapFilling,
			Title:          gapTitle(f),
			Priority:       Score(f.Severity, f.Category, weights),
			Severity:       f.Severity,
			Category:       f.Category,
			Recommendation: f.Recommendation,
			Impact:         f.Impact,
			SourceRef:      "gap:" + f.Type,
		})
	}

	items = append(items, trackedWorkItems(tracked, weights)...)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})
	return items
}

// trackedWorkItems projects the open tracked issues from the three scored
// categories into work items.
func trackedWorkItems(tracked *producer.Categorized, weights settings.Weights) []types.WorkItem {
	if tracked == nil {
		return nil
	}

	var items []types.WorkItem
	project := func(category string, fallback types.Severity, issues []producer.TrackedItem) {
		for _, issue := range issues {
			if !issue.Open {
				continue
			}
			severity := itemSeverity(issue, fallback)
			items = append(items, types.WorkItem{
				Type:      types.WorkIssue,
				Title:     issue.Title,
				Priority:  Score(severity, category, weights),
				Severity:  severity,
				Category:  category,
				SourceRef: "issue:" + issue.Source,
			})
		}
	}

	project("security", types.SeverityHigh, tracked.Security)
	project("bugs", types.SeverityMedium, tracked.Bugs)
	project("features", types.SeverityLow, tracked.Features)
	return items
}

// itemSeverity takes the item's own severity when it is one of the four
// recognized values, the category fallback otherwise.
func itemSeverity(item producer.TrackedItem, fallback types.Severity) types.Severity {
	if s := types.Severity(strings.ToLower(item.Severity)); s.IsValid() {
		return s
	}
	return fallback
}

func driftTitle(f types.Finding) string {
	return fmt.Sprintf("Correct %s", humanizeType(f.Type))
}

func gapTitle(f types.Finding) string {
	return fmt.Sprintf("Fill gap: %s", humanizeType(f.Type))
}

func humanizeType(t string) string {
	if t == "" {
		return "unclassified finding"
	}
	return strings.ReplaceAll(t, "-", " ")
}
