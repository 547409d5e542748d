// driftscan detects drift between what a project's documentation and
// tracked issues promise and what its codebase actually delivers, then
// builds a prioritized reconstruction plan.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootDir string

var rootCmd = &cobra.Command{
	Use:   "driftscan",
	Short: "Detect documentation/implementation drift and plan the fix",
	Long: `driftscan scans a project from three angles: tracked issues, documentation
and the codebase itself. It cross-references what is documented against what
is implemented, classifies drift and gaps, and produces a prioritized
reconstruction plan.

State, settings and scan history live under the project's .driftscan/
directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "project root to scan")
}

// projectRoot resolves the --root flag to an absolute, existing directory.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", rootDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
