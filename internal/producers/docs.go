package producers

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

var (
	headingRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)
	bulletRe  = regexp.MustCompile(`^\s*[-*]\s+(?:\*\*)?([^*\[].*?)(?:\*\*)?\s*(?:[-–—:].*)?$`)
)

// planFileHints mark a document as a plan/roadmap whose checkboxes count
// as planned work.
var planFileHints = []string{"roadmap", "plan", "todo", "backlog", "milestones"}

// featureHeadingHints mark a heading whose bullet list documents features.
var featureHeadingHints = []string{"feature", "capabilit", "what it does", "functionality"}

// DocsProducer reads the project's documentation: the README and anything
// under docs/. It extracts documented features, planned-work checkboxes,
// and the presence of baseline docs.
type DocsProducer struct{}

// NewDocsProducer returns the documentation producer.
func NewDocsProducer() *DocsProducer {
	return &DocsProducer{}
}

// Name implements producer.Producer.
func (p *DocsProducer) Name() string {
	return producer.SourceDocs
}

// Enabled implements producer.Producer.
func (p *DocsProducer) Enabled(cfg settings.Settings) bool {
	return cfg.Sources.Docs
}

// Analyze implements producer.Producer.
func (p *DocsProducer) Analyze(ctx context.Context, target producer.Target) (*producer.Result, error) {
	result := &producer.Result{
		PlannedWork: &producer.PlannedWork{},
		Summary:     &producer.DocSummary{},
	}

	readme := readFirst(target.Root, "README.md", "README", "readme.md")
	result.Summary.KeyDocsPresent.Readme = readme != ""
	result.Summary.KeyDocsPresent.Contributing = readFirst(target.Root, "CONTRIBUTING.md") != ""
	result.Summary.KeyDocsPresent.Changelog = readFirst(target.Root, "CHANGELOG.md") != ""

	if readme != "" {
		result.Summary.FilesScanned++
		result.DocumentedFeatures = append(result.DocumentedFeatures, extractFeatures(readme)...)
		countPlannedWork(readme, result.PlannedWork)
		result.DocumentationGaps = append(result.DocumentationGaps, readmeGaps(readme)...)
	}

	docsDir := filepath.Join(target.Root, "docs")
	if _, err := os.Stat(docsDir); err == nil {
		lim := limitsFor(target.Settings.Scan.Depth)
		err := walkTree(ctx, docsDir, target.Settings.Exclude.Paths, lim, func(rel string, _ os.DirEntry) error {
			if !strings.HasSuffix(rel, ".md") {
				return nil
			}
			data, err := os.ReadFile(filepath.Join(docsDir, rel))
			if err != nil {
				return nil
			}
			content := string(data)
			result.Summary.FilesScanned++
			result.DocumentedFeatures = append(result.DocumentedFeatures, extractFeatures(content)...)
			if isPlanFile(rel) || isPlanFile(firstHeading(content)) {
				countPlannedWork(content, result.PlannedWork)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	result.DocumentedFeatures = dedupe(result.DocumentedFeatures)
	return result, nil
}

func readFirst(root string, names ...string) string {
	for _, name := range names {
		if data, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			return string(data)
		}
	}
	return ""
}

// extractFeatures collects bullet entries under feature-ish headings.
func extractFeatures(content string) []string {
	var features []string
	inFeatures := false

	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			inFeatures = isFeatureHeading(m[1])
			continue
		}
		if !inFeatures {
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if f := strings.TrimSpace(m[1]); f != "" {
				features = append(features, f)
			}
		}
	}
	return features
}

func isFeatureHeading(heading string) bool {
	h := strings.ToLower(heading)
	for _, hint := range featureHeadingHints {
		if strings.Contains(h, hint) {
			return true
		}
	}
	return false
}

func isPlanFile(name string) bool {
	n := strings.ToLower(name)
	for _, hint := range planFileHints {
		if strings.Contains(n, hint) {
			return true
		}
	}
	return false
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// countPlannedWork accumulates checkbox totals into plan. Unchecked item
// titles are kept (capped) so drift findings can name them.
func countPlannedWork(content string, plan *producer.PlannedWork) {
	const maxNamedItems = 50
	for _, line := range strings.Split(content, "\n") {
		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		plan.CheckboxTotal++
		if m[1] != " " {
			plan.CompletedCount++
		} else if len(plan.Items) < maxNamedItems {
			plan.Items = append(plan.Items, strings.TrimSpace(m[2]))
		}
	}
}

// readmeGaps flags a README too thin to orient anyone.
func readmeGaps(readme string) []types.Finding {
	lines := 0
	for _, line := range strings.Split(readme, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines >= 10 {
		return nil
	}
	return []types.Finding{{
		Type:        "thin-readme",
		Severity:    types.SeverityLow,
		Category:    "docs",
		Description: "The README has fewer than 10 lines of content.",
		Impact:      "The project's purpose and usage are effectively undocumented.",
	}}
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}

var _ producer.Producer = (*DocsProducer)(nil)
