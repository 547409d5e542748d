package settings

import (
	"testing"

	"pgregory.net/rapid"
)

func genPathItem(t *rapid.T, label string) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	n := rapid.IntRange(1, 12).Draw(t, label+"Len")
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rapid.IntRange(0, len(letters)-1).Draw(t, label+"Char")]
	}
	return string(b)
}

func genSettings(t *rapid.T) Settings {
	depths := []Depth{DepthQuick, DepthMedium, DepthThorough}
	modes := []OutputMode{OutputFile, OutputDisplay, OutputBoth}

	nPaths := rapid.IntRange(0, 4).Draw(t, "nPaths")
	paths := make([]string, nPaths)
	for i := range paths {
		paths[i] = genPathItem(t, "path") + "/**"
	}

	nLabels := rapid.IntRange(0, 3).Draw(t, "nLabels")
	labels := make([]string, nLabels)
	for i := range labels {
		labels[i] = genPathItem(t, "label")
	}

	return Settings{
		Sources: Sources{
			Issues: rapid.Bool().Draw(t, "issues"),
			Docs:   rapid.Bool().Draw(t, "docs"),
			Code:   rapid.Bool().Draw(t, "code"),
		},
		Scan: Scan{
			Depth: depths[rapid.IntRange(0, 2).Draw(t, "depth")],
		},
		Output: Output{
			Mode: modes[rapid.IntRange(0, 2).Draw(t, "mode")],
			Path: genPathItem(t, "out") + ".md",
		},
		Weights: Weights{
			Security: rapid.IntRange(0, 50).Draw(t, "wSec"),
			Bugs:     rapid.IntRange(0, 50).Draw(t, "wBug"),
			Features: rapid.IntRange(0, 50).Draw(t, "wFeat"),
			Docs:     rapid.IntRange(0, 50).Draw(t, "wDocs"),
		},
		Exclude: Exclude{Paths: paths, Labels: labels},
	}
}

// Formatting then parsing any settings value recovers it exactly, and the
// formatted document is stable across a second round trip.
func TestSettingsRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genSettings(t)

		doc := formatDocument(cfg)
		got := merge(Default(), parseDocument(doc))
		if got.Sources != cfg.Sources || got.Scan != cfg.Scan || got.Output != cfg.Output || got.Weights != cfg.Weights {
			t.Fatalf("round trip changed scalar fields:\n got %+v\nwant %+v", got, cfg)
		}
		if len(got.Exclude.Paths) != len(cfg.Exclude.Paths) || len(got.Exclude.Labels) != len(cfg.Exclude.Labels) {
			t.Fatalf("round trip changed exclude lists:\n got %+v\nwant %+v", got.Exclude, cfg.Exclude)
		}
		for i := range cfg.Exclude.Paths {
			if got.Exclude.Paths[i] != cfg.Exclude.Paths[i] {
				t.Fatalf("path %d: got %q want %q", i, got.Exclude.Paths[i], cfg.Exclude.Paths[i])
			}
		}

		if again := formatDocument(got); again != doc {
			t.Fatalf("second format not byte-identical")
		}
	})
}
