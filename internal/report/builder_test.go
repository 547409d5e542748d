package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens/driftscan/internal/synthesis"
	"github.com/codelens/driftscan/internal/types"
)

func sampleOutcome() *synthesis.Outcome {
	return &synthesis.Outcome{
		CrossRef: synthesis.CrossRefResult{
			Aligned:                  []string{"auth"},
			DocumentedNotImplemented: []string{"billing"},
			ImplementedNotDocumented: []string{"metrics"},
		},
		Drift: []types.Finding{
			{
				Type:           "plan-stagnation",
				Severity:       types.SeverityHigh,
				Description:    "Documented plan has 20 trackable items but only 2 (10%) are complete.",
				Recommendation: "Re-scope the plan.",
			},
		},
		Gaps: []types.Finding{
			{
				Type:        "no-tests",
				Severity:    types.SeverityCritical,
				Category:    "testing",
				Description: "No automated tests were found in the codebase.",
				Impact:      "Changes cannot be verified.",
			},
		},
		WorkItems: []types.WorkItem{
			{Type: types.WorkGapFilling, Title: "Fill gap: no tests", Severity: types.SeverityCritical, Priority: 10},
			{Type: types.WorkDriftCorrection, Title: "Correct plan stagnation", Severity: types.SeverityHigh, Priority: 8},
		},
		Plan: types.Plan{
			Immediate: []types.WorkItem{
				{Title: "Fill gap: no tests", Severity: types.SeverityCritical, Priority: 10},
			},
			ShortTerm: []types.WorkItem{
				{Title: "Correct plan stagnation", Severity: types.SeverityHigh, Priority: 8},
			},
		},
	}
}

func TestBuildSummaryCounts(t *testing.T) {
	rep := Build(sampleOutcome(), "scan-1", time.Now())

	assert.Equal(t, 1, rep.Summary.DriftCount)
	assert.Equal(t, 1, rep.Summary.GapCount)
	assert.Equal(t, 2, rep.Summary.WorkItemCount)
	assert.Equal(t, 1, rep.Summary.CriticalCount)
	assert.Equal(t, 1, rep.Summary.AlignedCount)
}

func TestBuildMarkdownSections(t *testing.T) {
	rep := Build(sampleOutcome(), "scan-1", time.Now())

	for _, section := range []string{
		"# Drift Report",
		"## Executive Summary",
		"## Drift Analysis",
		"## Gap Analysis",
		"## Cross-Reference Analysis",
		"## Reconstruction Plan",
		"### Immediate",
		"### Short-term",
		"### Medium-term",
		"### Backlog",
	} {
		assert.Contains(t, rep.Markdown, section)
	}

	assert.Contains(t, rep.Markdown, "**plan-stagnation** (high)")
	assert.Contains(t, rep.Markdown, "**no-tests** (critical)")
	assert.Contains(t, rep.Markdown, "Impact: Changes cannot be verified.")
	assert.Contains(t, rep.Markdown, "1. Fill gap: no tests (critical, score 10)")
	assert.Contains(t, rep.Markdown, "Implemented but not documented: metrics")
}

func TestBuildEmptyOutcomeRendersNone(t *testing.T) {
	rep := Build(&synthesis.Outcome{}, "scan-2", time.Now())

	assert.Zero(t, rep.Summary.DriftCount)
	assert.Zero(t, rep.Summary.GapCount)
	assert.Zero(t, rep.Summary.WorkItemCount)

	// Every analysis section and all four buckets say None.
	assert.GreaterOrEqual(t, strings.Count(rep.Markdown, "None\n"), 7)
}

func TestBuildDeterministic(t *testing.T) {
	now := time.Now()
	first := Build(sampleOutcome(), "scan-3", now)
	second := Build(sampleOutcome(), "scan-3", now)
	assert.Equal(t, first, second)
}

func TestDisplayWritesAllBuckets(t *testing.T) {
	out := sampleOutcome()
	rep := Build(out, "scan-4", time.Now())

	var buf bytes.Buffer
	Display(&buf, rep, out.Plan)

	text := buf.String()
	require.NotEmpty(t, text)
	for _, want := range []string{"Immediate", "Short-term", "Medium-term", "Backlog", "Fill gap: no tests"} {
		assert.Contains(t, text, want)
	}
}
