package producers

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

// ciConfigGlobs map CI systems to the config paths that indicate them.
var ciConfigGlobs = map[string][]string{
	"GitHub Actions":  {".github/workflows/*.yml", ".github/workflows/*.yaml"},
	"GitLab CI":       {".gitlab-ci.yml"},
	"CircleCI":        {".circleci/config.yml"},
	"Travis CI":       {".travis.yml"},
	"Azure Pipelines": {"azure-pipelines.yml"},
	"Jenkins":         {"Jenkinsfile"},
}

// sourceExtensions are the file extensions counted as source code.
var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true,
	".java": true, ".rb": true, ".rs": true, ".c": true, ".cc": true,
	".cpp": true, ".cs": true, ".kt": true, ".swift": true,
}

// skipFeatureDirs are top-level directories that never count as an
// implemented feature.
var skipFeatureDirs = map[string]bool{
	"docs": true, "doc": true, "examples": true, "example": true,
	"scripts": true, "build": true, "dist": true, "test": true,
	"tests": true, "testdata": true, "tools": true, "assets": true,
	"vendor": true, "node_modules": true,
}

// CodeProducer walks the project tree and reports what is actually built:
// implemented features inferred from package structure, test presence, and
// CI configuration.
type CodeProducer struct{}

// NewCodeProducer returns the codebase producer.
func NewCodeProducer() *CodeProducer {
	return &CodeProducer{}
}

// Name implements producer.Producer.
func (p *CodeProducer) Name() string {
	return producer.SourceCode
}

// Enabled implements producer.Producer.
func (p *CodeProducer) Enabled(cfg settings.Settings) bool {
	return cfg.Sources.Code
}

// Analyze implements producer.Producer.
func (p *CodeProducer) Analyze(ctx context.Context, target producer.Target) (*producer.Result, error) {
	result := &producer.Result{
		Patterns: &producer.Patterns{},
		Health:   &producer.Health{HasCI: detectCI(target.Root)},
	}

	lim := limitsFor(target.Settings.Scan.Depth)
	featureDirs := map[string]bool{}
	sourceFiles := 0

	err := walkTree(ctx, target.Root, target.Settings.Exclude.Paths, lim, func(rel string, _ os.DirEntry) error {
		base := path.Base(rel)

		if strings.HasSuffix(base, "_test.go") || isTestPath(rel) {
			result.Patterns.HasTests = true
		}
		if sourceExtensions[path.Ext(base)] {
			sourceFiles++
			if dir := topFeatureDir(rel); dir != "" {
				featureDirs[dir] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ImplementedFeatures = featureList(featureDirs)

	// The module name itself counts as an implemented capability when no
	// feature directory already claims it.
	if name := moduleName(target.Root); name != "" && !featureDirs[name] {
		result.ImplementedFeatures = append(result.ImplementedFeatures, producer.Feature{
			Name: name, Path: "go.mod",
		})
	}

	if sourceFiles == 0 {
		result.Gaps = append(result.Gaps, types.Finding{
			Type:        "no-source",
			Severity:    types.SeverityHigh,
			Category:    "code",
			Description: "No recognized source files were found in the project tree.",
			Impact:      "There is nothing to cross-reference documentation against.",
		})
	}

	return result, nil
}

// topFeatureDir returns the top-level directory a source file sits in,
// descending one level into grouping dirs like internal/ or src/.
func topFeatureDir(rel string) string {
	parts := strings.Split(rel, "/")
	if len(parts) < 2 {
		return ""
	}
	dir := parts[0]
	if (dir == "internal" || dir == "src" || dir == "pkg" || dir == "lib" || dir == "cmd") && len(parts) >= 3 {
		dir = parts[1]
	}
	if skipFeatureDirs[strings.ToLower(dir)] {
		return ""
	}
	return dir
}

func isTestPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		p := strings.ToLower(part)
		if p == "test" || p == "tests" || p == "__tests__" || p == "spec" {
			return true
		}
	}
	return false
}

func featureList(dirs map[string]bool) []producer.Feature {
	names := make([]string, 0, len(dirs))
	for name := range dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	features := make([]producer.Feature, 0, len(names))
	for _, name := range names {
		features = append(features, producer.Feature{Name: name, Path: name})
	}
	return features
}

// moduleName reads the module's final path element from go.mod, if any.
func moduleName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	mf, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil || mf.Module == nil {
		return ""
	}
	return path.Base(mf.Module.Mod.Path)
}

// detectCI checks the known CI config locations.
func detectCI(root string) bool {
	for _, globs := range ciConfigGlobs {
		for _, g := range globs {
			matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(g)))
			if err == nil && len(matches) > 0 {
				return true
			}
		}
	}
	return false
}

var _ producer.Producer = (*CodeProducer)(nil)
