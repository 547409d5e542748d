// Package settings holds the user-tunable scan configuration and its
// on-disk store. The persisted form is a human-readable markdown document;
// only lines matching a small two-level key:value grammar are machine-parsed
// (see parser.go for the field table).
package settings

// Depth controls how much of the project tree producers examine.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthMedium   Depth = "medium"
	DepthThorough Depth = "thorough"
)

// OutputMode controls where the final report goes.
type OutputMode string

const (
	OutputFile    OutputMode = "file"
	OutputDisplay OutputMode = "display"
	OutputBoth    OutputMode = "both"
)

// Settings is the full scan configuration. Every field has a default, so a
// Settings produced by the store is always fully populated.
type Settings struct {
	Sources Sources `yaml:"sources"`
	Scan    Scan    `yaml:"scan"`
	Output  Output  `yaml:"output"`
	Weights Weights `yaml:"weights"`
	Exclude Exclude `yaml:"exclude"`
}

// Sources toggles the three producers.
type Sources struct {
	Issues bool `yaml:"issues"`
	Docs   bool `yaml:"docs"`
	Code   bool `yaml:"code"`
}

// Scan holds producer-side tuning.
type Scan struct {
	Depth Depth `yaml:"depth"`
}

// Output holds report destination settings.
type Output struct {
	Mode OutputMode `yaml:"mode"`
	Path string     `yaml:"path"`
}

// Weights are the per-category priority weights used when scoring work
// items. Categories without a weight score 0.
type Weights struct {
	Security int `yaml:"security"`
	Bugs     int `yaml:"bugs"`
	Features int `yaml:"features"`
	Docs     int `yaml:"docs"`
}

// For returns the weight for a category name, 0 if the category has none.
func (w Weights) For(category string) int {
	switch category {
	case "security":
		return w.Security
	case "bugs", "bug":
		return w.Bugs
	case "features", "feature":
		return w.Features
	case "docs", "documentation":
		return w.Docs
	default:
		return 0
	}
}

// Exclude lists paths (doublestar globs) and tracked-item labels that
// producers skip.
type Exclude struct {
	Paths  []string `yaml:"paths"`
	Labels []string `yaml:"labels"`
}

// Default returns the documented defaults for every field.
func Default() Settings {
	return Settings{
		Sources: Sources{Issues: true, Docs: true, Code: true},
		Scan:    Scan{Depth: DepthMedium},
		Output:  Output{Mode: OutputBoth, Path: "DRIFT_REPORT.md"},
		Weights: Weights{Security: 10, Bugs: 8, Features: 5, Docs: 3},
		Exclude: Exclude{
			Paths:  []string{"vendor/**", "node_modules/**", ".git/**"},
			Labels: []string{"wontfix", "duplicate"},
		},
	}
}

// ValidDepth reports whether d is one of the three recognized depths.
func ValidDepth(d Depth) bool {
	return d == DepthQuick || d == DepthMedium || d == DepthThorough
}

// ValidOutputMode reports whether m is one of the three recognized modes.
func ValidOutputMode(m OutputMode) bool {
	return m == OutputFile || m == OutputDisplay || m == OutputBoth
}
