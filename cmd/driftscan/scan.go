package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codelens/driftscan/internal/producers"
	"github.com/codelens/driftscan/internal/scan"
	"github.com/codelens/driftscan/internal/settings"
)

var (
	scanNoHistory bool
	scanTimeout   time.Duration
	scanDepth     string
	scanOutput    string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Run a full drift scan of the project",
	Long: `Run all enabled producers against the project, synthesize their results
into drift and gap findings, and generate the report.

Producers run concurrently, each under its own timeout. A producer that
fails or times out degrades the scan instead of failing it.

--depth and --output override the persisted settings for this run only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			rootDir = args[0]
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}

		if scanDepth != "" && !settings.ValidDepth(settings.Depth(scanDepth)) {
			return fmt.Errorf("--depth: want quick, medium or thorough, got %q", scanDepth)
		}
		if scanOutput != "" && !settings.ValidOutputMode(settings.OutputMode(scanOutput)) {
			return fmt.Errorf("--output: want file, display or both, got %q", scanOutput)
		}

		runner, err := scan.NewRunner(scan.Options{
			Root:            root,
			Registry:        producers.DefaultRegistry(),
			ProducerTimeout: scanTimeout,
			SkipHistory:     scanNoHistory,
			Override: func(cfg settings.Settings) settings.Settings {
				if scanDepth != "" {
					cfg.Scan.Depth = settings.Depth(scanDepth)
				}
				if scanOutput != "" {
					cfg.Output.Mode = settings.OutputMode(scanOutput)
				}
				return cfg
			},
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("%s %s\n\n", cyan("Scanning"), root)

		st, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s scan %s\n", green("Completed"), st.ID)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanDepth, "depth", "", "scan depth for this run (quick, medium, thorough)")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "report destination for this run (file, display, both)")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "skip recording this scan in the history database")
	scanCmd.Flags().DurationVar(&scanTimeout, "producer-timeout", scan.DefaultProducerTimeout, "per-producer analysis timeout")
	rootCmd.AddCommand(scanCmd)
}
