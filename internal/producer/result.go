// Package producer defines the contract between the scan core and its
// analysis producers. The core treats a Result as an opaque payload except
// for the documented fields below; their serialized names are the wire
// contract and must not change.
package producer

import (
	"time"

	"github.com/codelens/driftscan/internal/types"
)

// Producer identifiers. These are the fixed keys a scan stores results
// under; exactly these three producers exist.
const (
	SourceIssues = "issues"
	SourceDocs   = "docs"
	SourceCode   = "code"
)

// SourceIDs returns the fixed producer identifiers in canonical order.
func SourceIDs() []string {
	return []string{SourceIssues, SourceDocs, SourceCode}
}

// KnownSource reports whether id is one of the three fixed producer keys.
func KnownSource(id string) bool {
	return id == SourceIssues || id == SourceDocs || id == SourceCode
}

// Result is the structured payload a producer returns. Each producer fills
// only the sections it is responsible for; everything is optional.
type Result struct {
	// Issues producer.
	Categorized    *Categorized    `yaml:"categorized,omitempty" json:"categorized,omitempty"`
	Milestones     []Milestone     `yaml:"milestones,omitempty" json:"milestones,omitempty"`
	PotentialDrift []types.Finding `yaml:"potentialDrift,omitempty" json:"potentialDrift,omitempty"`

	// Docs producer.
	DocumentedFeatures []string        `yaml:"documentedFeatures,omitempty" json:"documentedFeatures,omitempty"`
	PlannedWork        *PlannedWork    `yaml:"plannedWork,omitempty" json:"plannedWork,omitempty"`
	Summary            *DocSummary     `yaml:"summary,omitempty" json:"summary,omitempty"`
	DocumentationGaps  []types.Finding `yaml:"documentationGaps,omitempty" json:"documentationGaps,omitempty"`

	// Code producer.
	ImplementedFeatures []Feature       `yaml:"implementedFeatures,omitempty" json:"implementedFeatures,omitempty"`
	Patterns            *Patterns       `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Health              *Health         `yaml:"health,omitempty" json:"health,omitempty"`
	Gaps                []types.Finding `yaml:"gaps,omitempty" json:"gaps,omitempty"`
}

// Categorized splits tracked items into the three scored categories.
type Categorized struct {
	Security []TrackedItem `yaml:"security" json:"security"`
	Bugs     []TrackedItem `yaml:"bugs" json:"bugs"`
	Features []TrackedItem `yaml:"features" json:"features"`
}

// Total returns the number of tracked items across all categories.
func (c *Categorized) Total() int {
	if c == nil {
		return 0
	}
	return len(c.Security) + len(c.Bugs) + len(c.Features)
}

// TrackedItem is one issue/ticket surfaced by the issues producer.
type TrackedItem struct {
	Title     string     `yaml:"title" json:"title"`
	Labels    []string   `yaml:"labels,omitempty" json:"labels,omitempty"`
	Priority  string     `yaml:"priority,omitempty" json:"priority,omitempty"`
	Severity  string     `yaml:"severity,omitempty" json:"severity,omitempty"`
	Open      bool       `yaml:"open" json:"open"`
	UpdatedAt *time.Time `yaml:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Source    string     `yaml:"source,omitempty" json:"source,omitempty"`
}

// HasMarker reports whether the item carries any of the given labels or
// priority markers (case-insensitive match handled by the caller's input).
func (t TrackedItem) HasMarker(markers ...string) bool {
	for _, m := range markers {
		if t.Priority == m || t.Severity == m {
			return true
		}
		for _, l := range t.Labels {
			if l == m {
				return true
			}
		}
	}
	return false
}

// Milestone is a dated delivery target from the issues producer.
type Milestone struct {
	Name      string     `yaml:"name" json:"name"`
	Due       *time.Time `yaml:"due,omitempty" json:"due,omitempty"`
	OpenItems int        `yaml:"openItems" json:"openItems"`
}

// PlannedWork summarizes a documented plan's trackable checkboxes.
type PlannedWork struct {
	CheckboxTotal  int      `yaml:"checkboxTotal" json:"checkboxTotal"`
	CompletedCount int      `yaml:"completedCount" json:"completedCount"`
	Items          []string `yaml:"items,omitempty" json:"items,omitempty"`
}

// CompletionRatio returns completed/total in [0,1]; 0 when the plan has no
// trackable items.
func (p *PlannedWork) CompletionRatio() float64 {
	if p == nil || p.CheckboxTotal == 0 {
		return 0
	}
	return float64(p.CompletedCount) / float64(p.CheckboxTotal)
}

// DocSummary describes the state of baseline documentation.
type DocSummary struct {
	KeyDocsPresent KeyDocs `yaml:"keyDocsPresent" json:"keyDocsPresent"`
	FilesScanned   int     `yaml:"filesScanned,omitempty" json:"filesScanned,omitempty"`
}

// KeyDocs flags which baseline documents exist.
type KeyDocs struct {
	Readme       bool `yaml:"readme" json:"readme"`
	Contributing bool `yaml:"contributing,omitempty" json:"contributing,omitempty"`
	Changelog    bool `yaml:"changelog,omitempty" json:"changelog,omitempty"`
}

// Feature is one implemented capability observed by the code producer.
type Feature struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Patterns holds structural observations about the codebase.
type Patterns struct {
	HasTests bool `yaml:"hasTests" json:"hasTests"`
}

// Health holds project hygiene observations.
type Health struct {
	HasCI bool `yaml:"hasCI" json:"hasCI"`
}
