package synthesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/types"
)

// staleAfter is how long a tracked item may go without an update before it
// counts as stale for the priority-neglect rule.
const staleAfter = 90 * 24 * time.Hour

// Drift rule types.
const (
	DriftPlanStagnation   = "plan-stagnation"
	DriftPriorityNeglect  = "priority-neglect"
	DriftDocumentationLag = "documentation-lag"
	DriftScopeOvercommit  = "scope-overcommit"
	DriftMilestoneSlip    = "milestone-slippage"
)

// Fixed recommendation per drift type.
var driftRecommendations = map[string]string{
	DriftPlanStagnation:   "Re-scope the documented plan or schedule dedicated time to work through it.",
	DriftPriorityNeglect:  "Triage the stale high-priority items: close, reprioritize, or act on them.",
	DriftDocumentationLag: "Document the implemented features so the stated capabilities match reality.",
	DriftScopeOvercommit:  "Trim the documented scope or add the missing implementations to the plan.",
	DriftMilestoneSlip:    "Re-plan the overdue milestones with realistic dates for the remaining items.",
}

// DriftInput is everything the drift rules read. All fields tolerate their
// zero value; an absent producer simply feeds nothing into the rules.
type DriftInput struct {
	PlannedWork *producer.PlannedWork
	Tracked     []producer.TrackedItem
	Milestones  []producer.Milestone
	CrossRef    CrossRefResult
	PassThrough []types.Finding // potentialDrift records surfaced by producers
	Now         time.Time
}

// DetectDrift evaluates the stateless drift rules. Each rule is independent
// and order-insensitive; findings are emitted in fixed rule order, followed
// by the producer pass-through records.
func DetectDrift(in DriftInput) []types.Finding {
	var findings []types.Finding

	if f := checkPlanStagnation(in.PlannedWork); f != nil {
		findings = append(findings, *f)
	}
	if f := checkPriorityNeglect(in.Tracked, in.Now); f != nil {
		findings = append(findings, *f)
	}
	if f := checkDocumentationLag(in.CrossRef); f != nil {
		findings = append(findings, *f)
	}
	if f := checkScopeOvercommit(in.CrossRef); f != nil {
		findings = append(findings, *f)
	}
	if f := checkMilestoneSlippage(in.Milestones, in.Now); f != nil {
		findings = append(findings, *f)
	}

	return append(findings, in.PassThrough...)
}

// plan-stagnation: a documented plan with more than 5 trackable items and a
// completion ratio below 30%.
func checkPlanStagnation(plan *producer.PlannedWork) *types.Finding {
	if plan == nil || plan.CheckboxTotal <= 5 {
		return nil
	}
	ratio := plan.CompletionRatio()
	if ratio >= 0.30 {
		return nil
	}
	return &types.Finding{
		Type:     DriftPlanStagnation,
		Severity: types.SeverityHigh,
		Category: "drift",
		Description: fmt.Sprintf("Documented plan has %d trackable items but only %d (%.0f%%) are complete.",
			plan.CheckboxTotal, plan.CompletedCount, ratio*100),
		AffectedItems:  plan.Items,
		Recommendation: driftRecommendations[DriftPlanStagnation],
	}
}

// priority-neglect: tracked items that are both stale (>90 days without an
// update) and carry a high-priority, critical, or security marker.
func checkPriorityNeglect(items []producer.TrackedItem, now time.Time) *types.Finding {
	var neglected []string
	for _, item := range items {
		if !item.Open || item.UpdatedAt == nil {
			continue
		}
		if now.Sub(*item.UpdatedAt) <= staleAfter {
			continue
		}
		if hasPriorityMarker(item) {
			neglected = append(neglected, item.Title)
		}
	}
	if len(neglected) == 0 {
		return nil
	}
	return &types.Finding{
		Type:     DriftPriorityNeglect,
		Severity: types.SeverityHigh,
		Category: "drift",
		Description: fmt.Sprintf("%d high-priority tracked items have not been updated in over 90 days.",
			len(neglected)),
		AffectedItems:  neglected,
		Recommendation: driftRecommendations[DriftPriorityNeglect],
	}
}

// documentation-lag: more than 3 implemented-but-undocumented items.
func checkDocumentationLag(xref CrossRefResult) *types.Finding {
	n := len(xref.ImplementedNotDocumented)
	if n <= 3 {
		return nil
	}
	return &types.Finding{
		Type:           DriftDocumentationLag,
		Severity:       types.SeverityMedium,
		Category:       "drift",
		Description:    fmt.Sprintf("%d implemented features have no documentation.", n),
		AffectedItems:  xref.ImplementedNotDocumented,
		Recommendation: driftRecommendations[DriftDocumentationLag],
	}
}

// scope-overcommit: more than 5 documented-but-not-implemented items.
func checkScopeOvercommit(xref CrossRefResult) *types.Finding {
	n := len(xref.DocumentedNotImplemented)
	if n <= 5 {
		return nil
	}
	return &types.Finding{
		Type:           DriftScopeOvercommit,
		Severity:       types.SeverityMedium,
		Category:       "drift",
		Description:    fmt.Sprintf("%d documented features have no implementation.", n),
		AffectedItems:  xref.DocumentedNotImplemented,
		Recommendation: driftRecommendations[DriftScopeOvercommit],
	}
}

// milestone-slippage: any milestone past its due date with open items.
func checkMilestoneSlippage(milestones []producer.Milestone, now time.Time) *types.Finding {
	var slipped []string
	for _, m := range milestones {
		if m.Due != nil && m.Due.Before(now) && m.OpenItems > 0 {
			slipped = append(slipped, m.Name)
		}
	}
	if len(slipped) == 0 {
		return nil
	}
	return &types.Finding{
		Type:     DriftMilestoneSlip,
		Severity: types.SeverityHigh,
		Category: "drift",
		Description: fmt.Sprintf("%d milestones are past due with open items remaining.",
			len(slipped)),
		AffectedItems:  slipped,
		Recommendation: driftRecommendations[DriftMilestoneSlip],
	}
}

// hasPriorityMarker reports whether the item carries a high-priority,
// critical, or security marker in its priority, severity, or labels.
func hasPriorityMarker(item producer.TrackedItem) bool {
	markers := []string{"critical", "high", "security", "p0", "p1", "urgent"}
	for _, m := range markers {
		if strings.EqualFold(item.Priority, m) || strings.EqualFold(item.Severity, m) {
			return true
		}
		for _, l := range item.Labels {
			if strings.EqualFold(l, m) {
				return true
			}
		}
	}
	return false
}
