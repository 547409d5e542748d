package synthesis

import (
	"fmt"
	"strings"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/types"
)

// Gap check types.
const (
	GapNoTests      = "no-tests"
	GapNoCI         = "no-ci"
	GapNoDocs       = "no-docs"
	GapOpenSecurity = "open-security-issues"
)

// GapInput is everything the gap checks read. Checks only fire on positive
// evidence: a nil section means the producer that owns it never reported,
// and silence is not treated as absence of the capability.
type GapInput struct {
	Patterns    *producer.Patterns
	Health      *producer.Health
	Summary     *producer.DocSummary
	Tracked     []producer.TrackedItem
	PassThrough []types.Finding // gap records surfaced by producers
}

// DetectGaps evaluates the stateless gap checks, each independent.
func DetectGaps(in GapInput) []types.Finding {
	var findings []types.Finding

	if in.Patterns != nil && !in.Patterns.HasTests {
		findings = append(findings, types.Finding{
			Type:        GapNoTests,
			Severity:    types.SeverityCritical,
			Category:    "testing",
			Description: "No automated tests were found in the codebase.",
			Impact:      "Changes cannot be verified; regressions ship silently.",
		})
	}

	if in.Health != nil && !in.Health.HasCI {
		findings = append(findings, types.Finding{
			Type:        GapNoCI,
			Severity:    types.SeverityHigh,
			Category:    "automation",
			Description: "No continuous-integration configuration was found.",
			Impact:      "Nothing enforces that the project builds or passes its checks.",
		})
	}

	if in.Summary != nil && !in.Summary.KeyDocsPresent.Readme {
		findings = append(findings, types.Finding{
			Type:        GapNoDocs,
			Severity:    types.SeverityHigh,
			Category:    "docs",
			Description: "Baseline project documentation (README) is missing.",
			Impact:      "New contributors have no entry point into the project.",
		})
	}

	if open := openSecurityItems(in.Tracked); len(open) > 0 {
		findings = append(findings, types.Finding{
			Type:          GapOpenSecurity,
			Severity:      types.SeverityCritical,
			Category:      "security",
			Description:   fmt.Sprintf("%d security-labeled tracked items are open.", len(open)),
			Impact:        "Known security exposures remain unaddressed.",
			AffectedItems: open,
		})
	}

	return append(findings, in.PassThrough...)
}

func openSecurityItems(items []producer.TrackedItem) []string {
	var open []string
	for _, item := range items {
		if !item.Open {
			continue
		}
		for _, l := range item.Labels {
			if strings.EqualFold(l, "security") {
				open = append(open, item.Title)
				break
			}
		}
	}
	return open
}
