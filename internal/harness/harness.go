// Package harness runs one mode (compare, upgrade, clean, leak-check) over the
// discovered tests, one test at a time.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"snapcheck/internal/compare"
	"snapcheck/internal/config"
	"snapcheck/internal/discovery"
	"snapcheck/internal/domain"
	"snapcheck/internal/execution"
	"snapcheck/internal/parser"
	"snapcheck/internal/paths"
	"snapcheck/internal/storage"
)

// ErrFailures is returned when a run finished but some tests failed or errored
var ErrFailures = errors.New("some tests failed")

// Reporter receives per-test results as they happen and the summary at the end
type Reporter interface {
	Result(r domain.Result)
	Summary(s domain.Summary)
}

// Progress is notified after every test
type Progress interface {
	Update(done, passed, failed int)
	Finish()
}

// Report is everything one run produced
type Report struct {
	Summary domain.Summary
	Results []domain.Result
}

// Failures returns the failing results
func (r *Report) Failures() []domain.Result {
	var out []domain.Result
	for _, res := range r.Results {
		if res.Status.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Harness composes discovery, the runner, the store and the comparison engine
type Harness struct {
	config   *config.Config
	mapper   *paths.Mapper
	walker   *discovery.Walker
	filter   *discovery.Filter
	runner   execution.Runner
	store    storage.Storage
	engine   *compare.Engine
	leaks    parser.Parser
	reporter Reporter
	progress Progress
	log      *slog.Logger
}

// New creates a Harness
func New(
	cfg *config.Config,
	mapper *paths.Mapper,
	walker *discovery.Walker,
	filter *discovery.Filter,
	runner execution.Runner,
	store storage.Storage,
	engine *compare.Engine,
	leaks parser.Parser,
	reporter Reporter,
	log *slog.Logger,
) *Harness {
	return &Harness{
		config:   cfg,
		mapper:   mapper,
		walker:   walker,
		filter:   filter,
		runner:   runner,
		store:    store,
		engine:   engine,
		leaks:    leaks,
		reporter: reporter,
		log:      log,
	}
}

// SetProgress sets the progress bar for the next run
func (h *Harness) SetProgress(progress Progress) {
	h.progress = progress
}

// Prepare creates the test and snapshot roots if they are missing
func (h *Harness) Prepare() error {
	for _, dir := range []string{h.mapper.TestRoot(), h.mapper.SnapshotRoot()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Tests discovers the tests to run, narrowed by the name filter
func (h *Harness) Tests() ([]domain.TestCase, error) {
	tests, err := h.walker.Discover()
	if err != nil {
		return nil, err
	}
	return h.filter.FilterByPattern(tests, h.config.Flags.Filter), nil
}

// Execute runs mode over tests. ModeClean ignores tests and works on the
// whole corpus, see Clean.
func (h *Harness) Execute(ctx context.Context, mode domain.Mode, tests []domain.TestCase) (*Report, error) {
	switch mode {
	case domain.ModeCompare:
		return h.each(ctx, mode, tests, h.compareOne)
	case domain.ModeUpgrade:
		return h.each(ctx, mode, tests, h.upgradeOne)
	case domain.ModeLeakCheck:
		return h.each(ctx, mode, tests, h.leakCheckOne)
	case domain.ModeClean:
		return h.Clean(ctx)
	}
	return nil, fmt.Errorf("unknown mode %d", mode)
}

type stepFunc func(ctx context.Context, tc domain.TestCase, snapshotPath string) domain.Result

// each runs step for every test in order. Individual failures never stop the run.
func (h *Harness) each(ctx context.Context, mode domain.Mode, tests []domain.TestCase, step stepFunc) (*Report, error) {
	report := &Report{Summary: domain.Summary{Mode: mode}}
	set := h.mapper.NewSet()
	startTime := time.Now()

	for _, tc := range tests {
		if err := ctx.Err(); err != nil {
			h.finish(report, startTime)
			return report, err
		}

		start := time.Now()
		var result domain.Result
		snapshotPath, err := set.Add(tc.Path)
		if err != nil {
			result = domain.Result{Status: domain.StatusError, Err: err}
		} else {
			result = step(ctx, tc, snapshotPath)
		}
		result.TestPath = tc.Path
		if result.SnapshotPath == "" {
			result.SnapshotPath = snapshotPath
		}
		result.Duration = time.Since(start)

		h.record(report, result)
	}

	h.finish(report, startTime)
	// Interrupted during the last test
	return report, ctx.Err()
}

// finish closes the progress bar before the reporter prints the summary
func (h *Harness) finish(report *Report, startTime time.Time) {
	report.Summary.Duration = time.Since(startTime)
	if h.progress != nil {
		h.progress.Finish()
	}
	h.reporter.Summary(report.Summary)
}

func (h *Harness) record(report *Report, result domain.Result) {
	report.Results = append(report.Results, result)
	report.Summary.Add(result)
	h.reporter.Result(result)
	if h.progress != nil {
		s := report.Summary
		h.progress.Update(s.Total, s.Passed, s.Failed+s.Errors)
	}
}

func (h *Harness) compareOne(ctx context.Context, tc domain.TestCase, snapshotPath string) domain.Result {
	output, err := h.runner.Run(ctx, tc.Path)
	if err != nil {
		return domain.Result{Status: domain.StatusError, Err: err}
	}

	result, err := h.engine.Compare(output, snapshotPath)
	if err != nil {
		return domain.Result{Status: domain.StatusError, Err: err}
	}
	return result
}

func (h *Harness) upgradeOne(ctx context.Context, tc domain.TestCase, snapshotPath string) domain.Result {
	output, err := h.runner.Run(ctx, tc.Path)
	if err != nil {
		// Keep the previous snapshot rather than recording a failed launch
		return domain.Result{Status: domain.StatusError, Err: err}
	}

	if err := h.store.Write(ctx, snapshotPath, output); err != nil {
		return domain.Result{Status: domain.StatusError, Err: err}
	}
	return domain.Result{Status: domain.StatusUpgraded}
}

func (h *Harness) leakCheckOne(ctx context.Context, tc domain.TestCase, _ string) domain.Result {
	code, diagnostics, err := h.runner.RunUnderLeakCheck(ctx, tc.Path)
	if err != nil {
		return domain.Result{Status: domain.StatusError, Err: err}
	}

	if code != h.config.LeakCheck.ExitCode {
		return domain.Result{Status: domain.StatusLeakClean}
	}
	return domain.Result{
		Status:      domain.StatusLeakDetected,
		Diagnostics: string(diagnostics),
		Leak:        h.leaks.ParseSummary(string(diagnostics)),
	}
}

// Clean deletes every snapshot that no test input under the test root maps to.
// The whole test root is walked, not just the configured directories, and the
// name filter does not apply: a snapshot whose input exists is never removed.
func (h *Harness) Clean(ctx context.Context) (*Report, error) {
	report := &Report{Summary: domain.Summary{Mode: domain.ModeClean}}
	startTime := time.Now()

	if h.config.Flags.Filter != "" {
		h.log.Warn("the filter is ignored when cleaning", "filter", h.config.Flags.Filter)
	}

	corpus, err := h.walker.DiscoverAll()
	if err != nil {
		return nil, err
	}

	keep := h.mapper.NewSet()
	for _, tc := range corpus {
		if _, err := keep.Add(tc.Path); err != nil {
			// A colliding input still owns the snapshot claimed first
			h.log.Warn("test input shares a snapshot path", "error", err)
		}
	}

	all, err := h.store.ListAll()
	if err != nil {
		return nil, err
	}

	for _, snapshotPath := range all {
		if err := ctx.Err(); err != nil {
			h.finish(report, startTime)
			return report, err
		}

		if keep.Contains(snapshotPath) {
			report.Summary.Total++
			report.Summary.Passed++
			continue
		}

		result := domain.Result{SnapshotPath: snapshotPath, Status: domain.StatusCleaned}
		if err := h.store.Remove(snapshotPath); err != nil {
			result.Status = domain.StatusError
			result.Err = err
		}
		h.record(report, result)
	}

	if _, err := h.store.PruneEmptyDirs(); err != nil {
		h.log.Warn("failed to prune empty snapshot dirs", "error", err)
	}

	h.finish(report, startTime)
	return report, nil
}
