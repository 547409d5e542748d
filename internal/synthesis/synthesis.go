// Package synthesis cross-references producer results, classifies drift and
// gaps, scores the findings, and buckets them into a prioritized plan. The
// whole pipeline is deterministic: the same producer results and settings
// always yield the same outcome.
package synthesis

import (
	"time"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

// Outcome is everything one synthesis run derives from the producer
// results. It feeds the report builder and the state findings.
type Outcome struct {
	CrossRef  CrossRefResult
	Drift     []types.Finding
	Gaps      []types.Finding
	WorkItems []types.WorkItem
	Plan      types.Plan
}

// Run executes the synthesis pipeline over the recorded producer results.
// A producer that never completed is simply absent from the map and
// contributes nothing; the pipeline still produces a valid (possibly
// empty) outcome.
func Run(results map[string]*producer.Result, cfg settings.Settings, now time.Time) *Outcome {
	issues := results[producer.SourceIssues]
	docs := results[producer.SourceDocs]
	code := results[producer.SourceCode]

	var documented []string
	var plannedWork *producer.PlannedWork
	var docSummary *producer.DocSummary
	var docGaps []types.Finding
	if docs != nil {
		documented = docs.DocumentedFeatures
		plannedWork = docs.PlannedWork
		docSummary = docs.Summary
		docGaps = docs.DocumentationGaps
	}

	var implemented []producer.Feature
	var patterns *producer.Patterns
	var health *producer.Health
	var codeGaps []types.Finding
	if code != nil {
		implemented = code.ImplementedFeatures
		patterns = code.Patterns
		health = code.Health
		codeGaps = code.Gaps
	}

	var tracked *producer.Categorized
	var milestones []producer.Milestone
	var potentialDrift []types.Finding
	if issues != nil {
		tracked = issues.Categorized
		milestones = issues.Milestones
		potentialDrift = issues.PotentialDrift
	}

	xref := CrossReference(documented, implemented)

	drift := DetectDrift(DriftInput{
		PlannedWork: plannedWork,
		Tracked:     allTracked(tracked),
		Milestones:  milestones,
		CrossRef:    xref,
		PassThrough: potentialDrift,
		Now:         now,
	})

	gaps := DetectGaps(GapInput{
		Patterns:    patterns,
		Health:      health,
		Summary:     docSummary,
		Tracked:     allTracked(tracked),
		PassThrough: append(append([]types.Finding{}, codeGaps...), docGaps...),
	})

	workItems := Prioritize(drift, gaps, tracked, cfg.Weights)
	plan := Bucketize(workItems, DefaultCapacities())

	return &Outcome{
		CrossRef:  xref,
		Drift:     drift,
		Gaps:      gaps,
		WorkItems: workItems,
		Plan:      plan,
	}
}

func allTracked(c *producer.Categorized) []producer.TrackedItem {
	if c == nil {
		return nil
	}
	all := make([]producer.TrackedItem, 0, c.Total())
	all = append(all, c.Security...)
	all = append(all, c.Bugs...)
	all = append(all, c.Features...)
	return all
}
