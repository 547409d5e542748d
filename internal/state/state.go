// Package state persists one scan's lifecycle: its identity, the
// phase-gated workflow machine, per-producer results, accumulated findings
// and the final report. The persisted document is the single source of
// truth during a run; every mutation is a full load-modify-save cycle
// serialized behind the store's mutex.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

// SchemaVersion is bumped when the persisted document layout changes.
const SchemaVersion = 1

// Status is the run-level lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// PhaseStatus is the lifecycle state of one history entry.
type PhaseStatus string

const (
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
)

// PhaseEntry is one append-only history record.
type PhaseEntry struct {
	Phase       Phase       `yaml:"phase"`
	Status      PhaseStatus `yaml:"status"`
	StartedAt   time.Time   `yaml:"startedAt"`
	CompletedAt *time.Time  `yaml:"completedAt,omitempty"`
	Result      any         `yaml:"result,omitempty"`
}

// PhaseRecord tracks the machine: the current phase plus the append-only
// history, ordered by start time.
type PhaseRecord struct {
	Current Phase        `yaml:"current"`
	History []PhaseEntry `yaml:"history"`
}

// ProducerRecord stores one producer's completed result.
type ProducerRecord struct {
	Status      string           `yaml:"status"`
	CompletedAt time.Time        `yaml:"completedAt"`
	Result      *producer.Result `yaml:"result,omitempty"`
}

// Finding categories. Findings accumulate in five independent append-only
// sequences.
const (
	CategoryIssues = "issues"
	CategoryDocs   = "docs"
	CategoryCode   = "code"
	CategoryDrift  = "drift"
	CategoryGaps   = "gaps"
)

// Findings holds the five category sequences.
type Findings struct {
	Issues []types.Finding `yaml:"issues,omitempty"`
	Docs   []types.Finding `yaml:"docs,omitempty"`
	Code   []types.Finding `yaml:"code,omitempty"`
	Drift  []types.Finding `yaml:"drift,omitempty"`
	Gaps   []types.Finding `yaml:"gaps,omitempty"`
}

// Append concatenates items onto the named category, preserving insertion
// order. Unknown categories are rejected.
func (f *Findings) Append(category string, items []types.Finding) error {
	switch category {
	case CategoryIssues:
		f.Issues = append(f.Issues, items...)
	case CategoryDocs:
		f.Docs = append(f.Docs, items...)
	case CategoryCode:
		f.Code = append(f.Code, items...)
	case CategoryDrift:
		f.Drift = append(f.Drift, items...)
	case CategoryGaps:
		f.Gaps = append(f.Gaps, items...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

// ScanState is the full persisted document for one run.
type ScanState struct {
	SchemaVersion int                        `yaml:"schemaVersion"`
	ID            string                     `yaml:"id"`
	Status        Status                     `yaml:"status"`
	StartedAt     time.Time                  `yaml:"startedAt"`
	UpdatedAt     time.Time                  `yaml:"updatedAt"`
	CompletedAt   *time.Time                 `yaml:"completedAt,omitempty"`
	Settings      settings.Settings          `yaml:"settings"`
	Phase         PhaseRecord                `yaml:"phase"`
	Producers     map[string]*ProducerRecord `yaml:"producers"`
	Findings      Findings                   `yaml:"findings"`
	Report        *types.Report              `yaml:"report,omitempty"`
}

// newScanState builds a fresh state for the given settings snapshot.
func newScanState(cfg settings.Settings, now time.Time) *ScanState {
	return &ScanState{
		SchemaVersion: SchemaVersion,
		ID:            newScanID(now),
		Status:        StatusPending,
		StartedAt:     now,
		UpdatedAt:     now,
		Settings:      cfg,
		Phase:         PhaseRecord{Current: PhaseSettingsCheck},
		Producers:     make(map[string]*ProducerRecord),
	}
}

// newScanID derives an identifier from the start time plus a random
// suffix, so concurrent projects never collide and IDs sort by time.
func newScanID(now time.Time) string {
	return fmt.Sprintf("scan-%s-%s", now.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}
