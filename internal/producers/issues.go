package producers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

// trackedItemFiles are the markdown files scanned for tracked items, in
// addition to everything under .driftscan/issues/.
var trackedItemFiles = []string{"ISSUES.md", "TODO.md", "BACKLOG.md"}

var (
	checkboxRe  = regexp.MustCompile(`^\s*[-*]\s*\[([ xX])\]\s*(.+)$`)
	labelRe     = regexp.MustCompile(`\[([a-zA-Z0-9_-]+)\]`)
	updatedRe   = regexp.MustCompile(`(?i)updated:?\s*(\d{4}-\d{2}-\d{2})`)
	milestoneRe = regexp.MustCompile(`(?i)^#{2,}\s*milestone:?\s*(.+?)\s*\(due\s+(\d{4}-\d{2}-\d{2})\)\s*$`)
)

// priorityMarkers are the label values recognized as a priority.
var priorityMarkers = map[string]bool{
	"p0": true, "p1": true, "p2": true, "p3": true,
	"critical": true, "high": true, "medium": true, "low": true, "urgent": true,
}

// IssuesProducer scans project-local tracked-item files: checkbox items
// with [label] tags and milestone headings with due dates.
type IssuesProducer struct{}

// NewIssuesProducer returns the tracked-issue producer.
func NewIssuesProducer() *IssuesProducer {
	return &IssuesProducer{}
}

// Name implements producer.Producer.
func (p *IssuesProducer) Name() string {
	return producer.SourceIssues
}

// Enabled implements producer.Producer.
func (p *IssuesProducer) Enabled(cfg settings.Settings) bool {
	return cfg.Sources.Issues
}

// Analyze implements producer.Producer.
func (p *IssuesProducer) Analyze(ctx context.Context, target producer.Target) (*producer.Result, error) {
	var items []producer.TrackedItem
	var milestones []producer.Milestone

	for _, name := range trackedItemFiles {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		path := filepath.Join(target.Root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue // file absent: nothing to scan
		}
		fileItems, fileMilestones := parseTrackedFile(name, string(data))
		items = append(items, fileItems...)
		milestones = append(milestones, fileMilestones...)
	}

	issuesDir := filepath.Join(target.Root, settings.DirName, "issues")
	if entries, err := os.ReadDir(issuesDir); err == nil {
		for _, entry := range entries {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(issuesDir, entry.Name()))
			if err != nil {
				continue
			}
			rel := settings.DirName + "/issues/" + entry.Name()
			fileItems, fileMilestones := parseTrackedFile(rel, string(data))
			items = append(items, fileItems...)
			milestones = append(milestones, fileMilestones...)
		}
	}

	items = dropExcludedLabels(items, target.Settings.Exclude.Labels)

	return &producer.Result{
		Categorized:    categorize(items),
		Milestones:     milestones,
		PotentialDrift: driftHints(items),
	}, nil
}

// parseTrackedFile extracts checkbox items and milestone headings. The
// source reference for each item is "file:line".
func parseTrackedFile(name, content string) ([]producer.TrackedItem, []producer.Milestone) {
	var items []producer.TrackedItem
	var milestones []producer.Milestone
	var currentMilestone *producer.Milestone

	for i, line := range strings.Split(content, "\n") {
		if m := milestoneRe.FindStringSubmatch(line); m != nil {
			if currentMilestone != nil {
				milestones = append(milestones, *currentMilestone)
			}
			due, err := time.Parse("2006-01-02", m[2])
			currentMilestone = &producer.Milestone{Name: m[1]}
			if err == nil {
				currentMilestone.Due = &due
			}
			continue
		}

		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		open := m[1] == " "
		item := parseTrackedItem(m[2], open)
		item.Source = fmt.Sprintf("%s:%d", name, i+1)
		items = append(items, item)

		if currentMilestone != nil && open {
			currentMilestone.OpenItems++
		}
	}
	if currentMilestone != nil {
		milestones = append(milestones, *currentMilestone)
	}

	return items, milestones
}

// parseTrackedItem pulls labels, a priority marker, and an update date out
// of one checkbox line's text.
func parseTrackedItem(text string, open bool) producer.TrackedItem {
	item := producer.TrackedItem{Open: open}

	for _, m := range labelRe.FindAllStringSubmatch(text, -1) {
		label := strings.ToLower(m[1])
		if priorityMarkers[label] && item.Priority == "" {
			item.Priority = label
			continue
		}
		item.Labels = append(item.Labels, label)
	}

	if m := updatedRe.FindStringSubmatch(text); m != nil {
		if ts, err := time.Parse("2006-01-02", m[1]); err == nil {
			item.UpdatedAt = &ts
		}
	}

	title := labelRe.ReplaceAllString(text, "")
	title = updatedRe.ReplaceAllString(title, "")
	item.Title = strings.Trim(strings.Join(strings.Fields(title), " "), " -–()")
	return item
}

func dropExcludedLabels(items []producer.TrackedItem, excluded []string) []producer.TrackedItem {
	if len(excluded) == 0 {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		drop := false
		for _, l := range item.Labels {
			for _, e := range excluded {
				if strings.EqualFold(l, e) {
					drop = true
				}
			}
		}
		if !drop {
			kept = append(kept, item)
		}
	}
	return kept
}

// categorize splits items into the three scored categories: security
// first, bugs second, everything else a feature.
func categorize(items []producer.TrackedItem) *producer.Categorized {
	cat := &producer.Categorized{
		Security: []producer.TrackedItem{},
		Bugs:     []producer.TrackedItem{},
		Features: []producer.TrackedItem{},
	}
	for _, item := range items {
		switch {
		case hasAnyLabel(item, "security", "vulnerability", "cve"):
			cat.Security = append(cat.Security, item)
		case hasAnyLabel(item, "bug", "bugs", "defect", "crash") ||
			strings.HasPrefix(strings.ToLower(item.Title), "fix "):
			cat.Bugs = append(cat.Bugs, item)
		default:
			cat.Features = append(cat.Features, item)
		}
	}
	return cat
}

func hasAnyLabel(item producer.TrackedItem, labels ...string) bool {
	for _, l := range item.Labels {
		for _, want := range labels {
			if strings.EqualFold(l, want) {
				return true
			}
		}
	}
	return false
}

// driftHints surfaces raw observations worth recording before synthesis:
// a backlog dominated by long-untouched open items.
func driftHints(items []producer.TrackedItem) []types.Finding {
	staleCutoff := time.Now().Add(-365 * 24 * time.Hour)
	var ancient []string
	for _, item := range items {
		if item.Open && item.UpdatedAt != nil && item.UpdatedAt.Before(staleCutoff) {
			ancient = append(ancient, item.Title)
		}
	}
	if len(ancient) < 5 {
		return nil
	}
	return []types.Finding{{
		Type:          "abandoned-backlog",
		Severity:      types.SeverityMedium,
		Category:      "drift",
		Description:   fmt.Sprintf("%d open tracked items have not been touched in over a year.", len(ancient)),
		AffectedItems: ancient,
	}}
}

var _ producer.Producer = (*IssuesProducer)(nil)
