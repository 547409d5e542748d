// Package producers holds the built-in analysis producers: tracked-issue
// scanning, documentation analysis, and codebase inspection. Each honors
// the producer contract and runs independently of the others.
package producers

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codelens/driftscan/internal/settings"
)

// walkLimits bounds a producer's tree walk according to scan depth.
type walkLimits struct {
	maxDepth int
	maxFiles int
}

func limitsFor(depth settings.Depth) walkLimits {
	switch depth {
	case settings.DepthQuick:
		return walkLimits{maxDepth: 2, maxFiles: 500}
	case settings.DepthThorough:
		return walkLimits{maxDepth: 64, maxFiles: 50000}
	default:
		return walkLimits{maxDepth: 5, maxFiles: 5000}
	}
}

// excludedPath reports whether the slash-separated relative path matches
// any exclusion glob. A directory pattern like "vendor/**" also excludes
// the directory itself so the walk can prune it.
func excludedPath(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
		if base, found := strings.CutSuffix(g, "/**"); found {
			if ok, err := doublestar.Match(base, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// walkTree visits regular files under root, pruning excluded directories
// and honoring the depth/file limits. fn receives slash-separated paths
// relative to root. The walk stops early on context cancellation.
func walkTree(ctx context.Context, root string, excludes []string, lim walkLimits, fn func(rel string, d fs.DirEntry) error) error {
	seen := 0
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if excludedPath(rel, excludes) {
				return fs.SkipDir
			}
			if strings.Count(rel, "/")+1 >= lim.maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if excludedPath(rel, excludes) {
			return nil
		}
		seen++
		if seen > lim.maxFiles {
			return fs.SkipAll
		}
		return fn(rel, d)
	})
}
