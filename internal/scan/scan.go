// Package scan drives a full run: settings check, parallel producers,
// synthesis, and report generation, advancing the persisted phase machine
// as each stage completes.
package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codelens/driftscan/internal/history"
	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/report"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/state"
	"github.com/codelens/driftscan/internal/synthesis"
	"github.com/codelens/driftscan/internal/types"
)

// DefaultProducerTimeout bounds one producer's analysis.
const DefaultProducerTimeout = 2 * time.Minute

// Options configures a Runner.
type Options struct {
	// Root is the project directory to scan.
	Root string

	// Registry supplies the producers. Required.
	Registry *producer.Registry

	// Out receives terminal report output. Defaults to os.Stdout.
	Out io.Writer

	// Err receives warnings about degraded producers. Defaults to os.Stderr.
	Err io.Writer

	// ProducerTimeout bounds each producer. Zero means
	// DefaultProducerTimeout.
	ProducerTimeout time.Duration

	// Override, when set, adjusts the settings snapshot for this run only.
	// The persisted settings document is not touched.
	Override func(settings.Settings) settings.Settings

	// SkipHistory disables the best-effort history archive.
	SkipHistory bool
}

// Runner executes scans for one project root.
type Runner struct {
	opts     Options
	settings *settings.Store
	state    *state.Store
}

// NewRunner builds a runner. The registry must be set.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("scan: registry is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.ProducerTimeout <= 0 {
		opts.ProducerTimeout = DefaultProducerTimeout
	}
	return &Runner{
		opts:     opts,
		settings: settings.NewStore(opts.Root),
		state:    state.NewStore(opts.Root),
	}, nil
}

// Run executes one complete scan and returns the final state. Producer
// failures degrade the scan, they do not fail it; only settings/state I/O
// errors and context cancellation are fatal.
func (r *Runner) Run(ctx context.Context) (*state.ScanState, error) {
	cfg, err := r.settingsCheck()
	if err != nil {
		return nil, err
	}

	results, err := r.parallelScan(ctx, cfg)
	if err != nil {
		return nil, err
	}

	outcome, err := r.synthesize(results, cfg)
	if err != nil {
		return nil, err
	}

	return r.generateReport(ctx, outcome, cfg)
}

// settingsCheck loads the settings (writing the canonical defaults document
// if none exists), creates a fresh run, and completes the first phase.
func (r *Runner) settingsCheck() (settings.Settings, error) {
	cfg, err := r.settings.Read()
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(r.settings.Path()); os.IsNotExist(statErr) {
		if err := r.settings.Write(cfg); err != nil {
			return cfg, err
		}
	}
	if r.opts.Override != nil {
		cfg = r.opts.Override(cfg)
	}

	if _, err := r.state.Create(cfg); err != nil {
		return cfg, err
	}
	if _, err := r.state.StartPhase(state.PhaseSettingsCheck); err != nil {
		return cfg, err
	}

	enabled := make([]string, 0, 3)
	for _, p := range r.opts.Registry.Enabled(cfg) {
		enabled = append(enabled, p.Name())
	}
	if _, err := r.state.CompletePhase(map[string]any{"enabledProducers": enabled}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parallelScan runs the enabled producers concurrently, each under its own
// timeout. A failed or timed-out producer is reported as a warning and left
// absent from the results; the scan continues.
func (r *Runner) parallelScan(ctx context.Context, cfg settings.Settings) (map[string]*producer.Result, error) {
	if _, err := r.state.StartPhase(state.PhaseParallelScan); err != nil {
		return nil, err
	}

	target := producer.Target{Root: r.opts.Root, Settings: cfg}
	results := make(map[string]*producer.Result)
	statuses := make(map[string]string)

	var g errgroup.Group
	var mu sync.Mutex

	for _, p := range r.opts.Registry.Enabled(cfg) {
		p := p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, r.opts.ProducerTimeout)
			defer cancel()

			res, err := p.Analyze(pctx, target)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				statuses[p.Name()] = "failed"
				fmt.Fprintf(r.opts.Err, "warning: producer %s failed: %v\n", p.Name(), err)
				return nil
			}

			if _, err := r.state.RecordProducerResult(p.Name(), res); err != nil {
				return err
			}
			results[p.Name()] = res
			statuses[p.Name()] = "completed"
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.appendRawFindings(results); err != nil {
		return nil, err
	}
	if _, err := r.state.CompletePhase(map[string]any{"producers": statuses}); err != nil {
		return nil, err
	}
	return results, nil
}

// appendRawFindings copies each producer's own observations into the
// per-source finding sequences before synthesis runs.
func (r *Runner) appendRawFindings(results map[string]*producer.Result) error {
	copyTo := func(category string, items []types.Finding) error {
		if len(items) == 0 {
			return nil
		}
		return r.state.AppendFindings(category, items)
	}

	if res := results[producer.SourceIssues]; res != nil {
		if err := copyTo(state.CategoryIssues, res.PotentialDrift); err != nil {
			return err
		}
	}
	if res := results[producer.SourceDocs]; res != nil {
		if err := copyTo(state.CategoryDocs, res.DocumentationGaps); err != nil {
			return err
		}
	}
	if res := results[producer.SourceCode]; res != nil {
		if err := copyTo(state.CategoryCode, res.Gaps); err != nil {
			return err
		}
	}
	return nil
}

// synthesize runs the deterministic synthesis pipeline over whatever
// producer results survived the scan phase.
func (r *Runner) synthesize(results map[string]*producer.Result, cfg settings.Settings) (*synthesis.Outcome, error) {
	if _, err := r.state.StartPhase(state.PhaseSynthesis); err != nil {
		return nil, err
	}

	outcome := synthesis.Run(results, cfg, time.Now())

	if err := r.state.AppendFindings(state.CategoryDrift, outcome.Drift); err != nil {
		return nil, err
	}
	if err := r.state.AppendFindings(state.CategoryGaps, outcome.Gaps); err != nil {
		return nil, err
	}
	if _, err := r.state.CompletePhase(map[string]any{
		"driftCount":    len(outcome.Drift),
		"gapCount":      len(outcome.Gaps),
		"workItemCount": len(outcome.WorkItems),
	}); err != nil {
		return nil, err
	}
	return outcome, nil
}

// generateReport builds the report, persists it, delivers it per the
// output mode, archives the run, and completes the terminal phase.
func (r *Runner) generateReport(ctx context.Context, outcome *synthesis.Outcome, cfg settings.Settings) (*state.ScanState, error) {
	st, err := r.state.StartPhase(state.PhaseReportGeneration)
	if err != nil {
		return nil, err
	}

	rep := report.Build(outcome, st.ID, time.Now())
	if err := r.state.SetReport(rep); err != nil {
		return nil, err
	}

	if cfg.Output.Mode == settings.OutputFile || cfg.Output.Mode == settings.OutputBoth {
		if err := r.writeReportFile(cfg.Output.Path, rep.Markdown); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Mode == settings.OutputDisplay || cfg.Output.Mode == settings.OutputBoth {
		report.Display(r.opts.Out, rep, outcome.Plan)
	}

	final, err := r.state.CompletePhase(map[string]any{"reportPath": cfg.Output.Path})
	if err != nil {
		return nil, err
	}

	if !r.opts.SkipHistory {
		r.archive(ctx, final)
	}
	return final, nil
}

// archive records the finished run in the history database. Best effort: a
// failure is a warning, never a scan error.
func (r *Runner) archive(ctx context.Context, st *state.ScanState) {
	arch, err := history.Open(r.opts.Root)
	if err != nil {
		fmt.Fprintf(r.opts.Err, "warning: history unavailable: %v\n", err)
		return
	}
	defer arch.Close()

	if err := arch.RecordScan(ctx, st); err != nil {
		fmt.Fprintf(r.opts.Err, "warning: recording scan history: %v\n", err)
	}
}

func (r *Runner) writeReportFile(rel, markdown string) error {
	path := filepath.Join(r.opts.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing report temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing report: %w", err)
	}
	return nil
}
