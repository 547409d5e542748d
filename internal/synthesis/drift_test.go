package synthesis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/types"
)

func findByType(t *testing.T, findings []types.Finding, typ string) *types.Finding {
	t.Helper()
	for i := range findings {
		if findings[i].Type == typ {
			return &findings[i]
		}
	}
	return nil
}

func TestPlanStagnation(t *testing.T) {
	tests := []struct {
		name string
		plan *producer.PlannedWork
		want bool
	}{
		{"fires at 10% of 20", &producer.PlannedWork{CheckboxTotal: 20, CompletedCount: 2}, true},
		{"quiet at 30%", &producer.PlannedWork{CheckboxTotal: 20, CompletedCount: 6}, false},
		{"quiet below item threshold", &producer.PlannedWork{CheckboxTotal: 5, CompletedCount: 0}, false},
		{"fires just above item threshold", &producer.PlannedWork{CheckboxTotal: 6, CompletedCount: 1}, true},
		{"quiet with no plan", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := DetectDrift(DriftInput{PlannedWork: tt.plan, Now: time.Now()})
			got := findByType(t, findings, DriftPlanStagnation)
			if !tt.want {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, types.SeverityHigh, got.Severity)
			assert.NotEmpty(t, got.Recommendation)
		})
	}
}

func TestPlanStagnationDescriptionHasCounts(t *testing.T) {
	findings := DetectDrift(DriftInput{
		PlannedWork: &producer.PlannedWork{CheckboxTotal: 20, CompletedCount: 2},
		Now:         time.Now(),
	})
	got := findByType(t, findings, DriftPlanStagnation)
	require.NotNil(t, got)
	assert.Contains(t, got.Description, "20")
	assert.Contains(t, got.Description, "10%")
}

func TestPriorityNeglect(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-30 * 24 * time.Hour)
	stale := now.Add(-120 * 24 * time.Hour)

	items := []producer.TrackedItem{
		{Title: "stale critical", Open: true, Priority: "critical", UpdatedAt: &stale},
		{Title: "stale security label", Open: true, Labels: []string{"security"}, UpdatedAt: &stale},
		{Title: "stale but low", Open: true, Priority: "low", UpdatedAt: &stale},
		{Title: "fresh critical", Open: true, Priority: "critical", UpdatedAt: &fresh},
		{Title: "closed critical", Open: false, Priority: "critical", UpdatedAt: &stale},
		{Title: "never updated", Open: true, Priority: "critical"},
	}

	findings := DetectDrift(DriftInput{Tracked: items, Now: now})
	got := findByType(t, findings, DriftPriorityNeglect)
	require.NotNil(t, got)
	assert.Equal(t, types.SeverityHigh, got.Severity)
	assert.Equal(t, []string{"stale critical", "stale security label"}, got.AffectedItems)
	assert.Contains(t, got.Description, "2")
}

func TestDocumentationLagThreshold(t *testing.T) {
	atThreshold := CrossRefResult{ImplementedNotDocumented: []string{"a", "b", "c"}}
	findings := DetectDrift(DriftInput{CrossRef: atThreshold, Now: time.Now()})
	assert.Nil(t, findByType(t, findings, DriftDocumentationLag), "3 items must not fire")

	over := CrossRefResult{ImplementedNotDocumented: []string{"a", "b", "c", "d"}}
	findings = DetectDrift(DriftInput{CrossRef: over, Now: time.Now()})
	got := findByType(t, findings, DriftDocumentationLag)
	require.NotNil(t, got)
	assert.Equal(t, types.SeverityMedium, got.Severity)
}

func TestScopeOvercommitThreshold(t *testing.T) {
	five := CrossRefResult{DocumentedNotImplemented: []string{"a", "b", "c", "d", "e"}}
	findings := DetectDrift(DriftInput{CrossRef: five, Now: time.Now()})
	assert.Nil(t, findByType(t, findings, DriftScopeOvercommit), "5 items must not fire")

	six := CrossRefResult{DocumentedNotImplemented: []string{"a", "b", "c", "d", "e", "f"}}
	findings = DetectDrift(DriftInput{CrossRef: six, Now: time.Now()})
	got := findByType(t, findings, DriftScopeOvercommit)
	require.NotNil(t, got)
	assert.Equal(t, types.SeverityMedium, got.Severity)
}

func TestMilestoneSlippage(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	milestones := []producer.Milestone{
		{Name: "v1.0", Due: &past, OpenItems: 3},
		{Name: "v1.1", Due: &past, OpenItems: 0},
		{Name: "v2.0", Due: &future, OpenItems: 5},
		{Name: "undated"},
	}

	findings := DetectDrift(DriftInput{Milestones: milestones, Now: now})
	got := findByType(t, findings, DriftMilestoneSlip)
	require.NotNil(t, got)
	assert.Equal(t, types.SeverityHigh, got.Severity)
	assert.Equal(t, []string{"v1.0"}, got.AffectedItems)
}

func TestDriftPassThrough(t *testing.T) {
	passed := []types.Finding{
		{Type: "version-mismatch", Severity: types.SeverityMedium, Description: "README says v2, code says v1"},
	}

	findings := DetectDrift(DriftInput{PassThrough: passed, Now: time.Now()})
	require.Len(t, findings, 1)
	assert.Equal(t, "version-mismatch", findings[0].Type)
}

func TestNoDriftOnEmptyInput(t *testing.T) {
	findings := DetectDrift(DriftInput{Now: time.Now()})
	assert.Empty(t, findings)
}
