// Package types holds the shared vocabulary of a scan: findings surfaced by
// producers and detectors, the work items the prioritizer produces from
// them, and the bucketed reconstruction plan.
package types

import (
	"fmt"
	"time"
)

// Severity classifies how urgent a finding or work item is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IsValid reports whether s is one of the four recognized severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Base returns the severity's contribution to a work item's score.
// One canonical table is used everywhere: critical 10, high 8, medium 5,
// low 2. Unknown severities score as low.
func (s Severity) Base() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 8
	case SeverityMedium:
		return 5
	default:
		return 2
	}
}

// Finding is a single drift, gap, or raw tracked-item observation, before
// prioritization. Producers and detectors both emit findings.
type Finding struct {
	Type           string   `yaml:"type" json:"type"`
	Severity       Severity `yaml:"severity" json:"severity"`
	Category       string   `yaml:"category,omitempty" json:"category,omitempty"`
	Description    string   `yaml:"description" json:"description"`
	Impact         string   `yaml:"impact,omitempty" json:"impact,omitempty"`
	Recommendation string   `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
	AffectedItems  []string `yaml:"affectedItems,omitempty" json:"affectedItems,omitempty"`
	Source         string   `yaml:"source,omitempty" json:"source,omitempty"`
}

// WorkItemType classifies what kind of remediation a work item calls for.
type WorkItemType string

const (
	WorkDriftCorrection WorkItemType = "drift-correction"
	WorkGapFilling      WorkItemType = "gap-filling"
	WorkIssue           WorkItemType = "issue"
)

// WorkItem is a scored finding ready for bucketing. Work items are created
// fresh on every synthesis run and never mutated afterwards.
type WorkItem struct {
	Type           WorkItemType `yaml:"type" json:"type"`
	Title          string       `yaml:"title" json:"title"`
	Priority       int          `yaml:"priority" json:"priority"`
	Severity       Severity     `yaml:"severity" json:"severity"`
	Category       string       `yaml:"category,omitempty" json:"category,omitempty"`
	Recommendation string       `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
	Impact         string       `yaml:"impact,omitempty" json:"impact,omitempty"`
	SourceRef      string       `yaml:"sourceRef,omitempty" json:"sourceRef,omitempty"`
}

// Plan is the final time-horizon bucketing of the sorted work items. Each
// bucket holds at most its capacity; overflow is dropped from the plan but
// remains in the full prioritized list.
type Plan struct {
	Immediate  []WorkItem `yaml:"immediate" json:"immediate"`
	ShortTerm  []WorkItem `yaml:"shortTerm" json:"shortTerm"`
	MediumTerm []WorkItem `yaml:"mediumTerm" json:"mediumTerm"`
	Backlog    []WorkItem `yaml:"backlog" json:"backlog"`
}

// Total returns the number of items across all buckets.
func (p Plan) Total() int {
	return len(p.Immediate) + len(p.ShortTerm) + len(p.MediumTerm) + len(p.Backlog)
}

// ReportSummary is the machine-readable roll-up of one synthesis run.
type ReportSummary struct {
	DriftCount    int `yaml:"driftCount" json:"driftCount"`
	GapCount      int `yaml:"gapCount" json:"gapCount"`
	WorkItemCount int `yaml:"workItemCount" json:"workItemCount"`
	CriticalCount int `yaml:"criticalCount" json:"criticalCount"`
	AlignedCount  int `yaml:"alignedCount" json:"alignedCount"`
}

// Report is the final scan output: summary counts plus the rendered
// markdown document.
type Report struct {
	Summary     ReportSummary `yaml:"summary" json:"summary"`
	Markdown    string        `yaml:"markdown" json:"markdown"`
	GeneratedAt time.Time     `yaml:"generatedAt" json:"generatedAt"`
}

// String implements fmt.Stringer for log lines.
func (p Plan) String() string {
	return fmt.Sprintf("plan{immediate:%d short:%d medium:%d backlog:%d}",
		len(p.Immediate), len(p.ShortTerm), len(p.MediumTerm), len(p.Backlog))
}
