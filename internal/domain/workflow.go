// Package domain implements the test workflow: discovery, mock swapping,
// command execution and report collection.
package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mockdock.dev/pkg/mockdock/internal/adapter"
	"mockdock.dev/pkg/mockdock/internal/config"
	"mockdock.dev/pkg/mockdock/internal/controller"
	"mockdock.dev/pkg/mockdock/internal/discover"
	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/internal/swap"
)

// ErrTestsFailed marks a completed run in which at least one test case did
// not pass. It is distinct from configuration and restoration errors so the
// CLI can map it to its own exit code.
var ErrTestsFailed = errors.New("one or more test cases failed")

// ErrCommandFailed marks a plain run command that exited non-zero.
var ErrCommandFailed = errors.New("command exited non-zero")

// TestArgs contains the arguments for running tests.
type TestArgs struct {
	Root     string
	Paths    []string
	Parallel int
}

// RunArgs contains the arguments for the plain run command.
type RunArgs struct {
	Root      string
	ExtraArgs []string
}

// ListArgs contains the arguments for listing classified paths.
type ListArgs struct {
	Root  string
	Paths []string
}

// RecoverArgs contains the arguments for a recovery pass.
type RecoverArgs struct {
	Root string
	// Check lists stale backups without restoring them.
	Check bool
}

// ReportArgs contains the arguments for re-displaying persisted reports.
type ReportArgs struct {
	Root string
}

// Workflow defines the top-level operations behind the CLI commands.
type Workflow interface {
	Test(ctx context.Context, args TestArgs) (m.RunSummary, error)
	Run(ctx context.Context, args RunArgs) (m.ExecResult, error)
	List(ctx context.Context, args ListArgs) ([]m.Candidate, error)
	Recover(ctx context.Context, args RecoverArgs) ([]m.RecoveredBackup, error)
	Report(ctx context.Context, args ReportArgs) (m.RunSummary, error)
}

type workflow struct {
	cfg      *config.Config
	swapper  *swap.Swapper
	executor adapter.Executor
	store    adapter.ReportStore
	ui       controller.UI

	// contentFS provides the bytes of discovered files; tests substitute a
	// fault-injecting filesystem.
	contentFS func(root string) fs.FS
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
func NewWorkflow(
	cfg *config.Config,
	swapper *swap.Swapper,
	executor adapter.Executor,
	store adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		cfg:       cfg,
		swapper:   swapper,
		executor:  executor,
		store:     store,
		ui:        ui,
		contentFS: func(root string) fs.FS { return os.DirFS(root) },
	}
}

func (w *workflow) Test(ctx context.Context, args TestArgs) (m.RunSummary, error) {
	root, err := filepath.Abs(args.Root)
	if err != nil {
		return m.RunSummary{}, fmt.Errorf("resolve root %s: %w", args.Root, err)
	}

	if err := w.refuseStaleBackups(root); err != nil {
		return m.RunSummary{}, err
	}

	spec, err := w.cfg.Command(config.CommandTest)
	if err != nil {
		return m.RunSummary{}, err
	}

	cases, err := w.collectCases(ctx, root, args.Paths)
	if err != nil {
		return m.RunSummary{}, err
	}

	w.ui.Start(ctx, len(cases))

	orch := NewOrchestrator(spec, root, w.swapper, w.executor, w.contentFS(root))

	summary, fatal := w.runCases(ctx, orch, root, cases, args.Parallel)

	if err := w.store.SaveReports(root, summary.Reports); err != nil {
		slog.Error("could not persist reports", "root", root, "error", err)
	}

	if err := w.ui.DisplaySummary(ctx, summary); err != nil {
		slog.Warn("could not render summary", "error", err)
	}

	if fatal != nil {
		return summary, fatal
	}

	if !summary.AllPassed() {
		return summary, ErrTestsFailed
	}

	return summary, nil
}

// runCases executes every case on a bounded worker pool. A restoration
// failure poisons its targets: later cases touching a poisoned target are
// skipped, and the first such failure is escalated after the pool drains.
func (w *workflow) runCases(ctx context.Context, orch Orchestrator, root string, cases []CaseRun, parallel int) (m.RunSummary, error) {
	var (
		mu       sync.Mutex
		reports  []m.TestReport
		poisoned = map[string]struct{}{}
		fatal    error
	)

	var group errgroup.Group
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for _, run := range cases {
		currentRun := run

		group.Go(func() error {
			if report, skip := w.skipPoisoned(root, currentRun, poisoned, &mu); skip {
				w.finishCase(ctx, report, &reports, &mu)
				return nil
			}

			report, err := orch.RunCase(ctx, currentRun)
			if err != nil {
				mu.Lock()

				var restoreErr *swap.RestoreError
				if errors.As(err, &restoreErr) {
					poisoned[restoreErr.Target] = struct{}{}
				}

				if fatal == nil {
					fatal = err
				}

				mu.Unlock()
			}

			w.finishCase(ctx, report, &reports, &mu)

			return nil
		})
	}

	_ = group.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].TestCase < reports[j].TestCase })

	return m.RunSummary{Reports: reports}, fatal
}

func (w *workflow) skipPoisoned(root string, run CaseRun, poisoned map[string]struct{}, mu *sync.Mutex) (m.TestReport, bool) {
	mu.Lock()
	defer mu.Unlock()

	if len(poisoned) == 0 {
		return m.TestReport{}, false
	}

	for _, mock := range run.Mocks {
		target := string(mock.Classification.Target)

		// The poisoned set holds canonical absolute paths; the case's target
		// must canonicalize to exactly one of them. A target that cannot be
		// canonicalized is left for the orchestrator's setup error.
		canon, err := swap.Canonicalize(filepath.Join(root, target))
		if err != nil {
			continue
		}

		if _, bad := poisoned[canon]; bad {
			report := m.TestReport{
				TestCase: run.TestCase,
				Driver:   run.Driver.RelPath,
				Outcome:  m.OutcomeSkipped,
				Err:      fmt.Sprintf("target %s is poisoned by an earlier restoration failure", target),
			}

			return report, true
		}
	}

	return m.TestReport{}, false
}

func (w *workflow) finishCase(ctx context.Context, report m.TestReport, reports *[]m.TestReport, mu *sync.Mutex) {
	mu.Lock()
	*reports = append(*reports, report)
	mu.Unlock()

	w.ui.CaseCompleted(ctx, report)
}

// collectCases discovers and groups candidates into per-test-case units of
// work. Mocks whose test case has no driver are reported, not run.
func (w *workflow) collectCases(ctx context.Context, root string, paths []string) ([]CaseRun, error) {
	resolver, err := w.cfg.Resolver()
	if err != nil {
		return nil, err
	}

	discovery := discover.New(resolver, w.cfg.Ignores)

	drivers := map[string]m.Candidate{}
	mocks := map[string][]m.Candidate{}

	err = discovery.Walk(ctx, root, func(cand m.Candidate) error {
		if !selected(cand.RelPath, paths) {
			return nil
		}

		switch cand.Classification.Kind {
		case m.Driver:
			if existing, ok := drivers[cand.Classification.TestCase]; ok {
				slog.Warn("multiple drivers resolve to one test case; keeping the first",
					"test_case", cand.Classification.TestCase,
					"kept", existing.RelPath, "ignored", cand.RelPath)

				return nil
			}

			drivers[cand.Classification.TestCase] = cand
		case m.Mock:
			mocks[cand.Classification.TestCase] = append(mocks[cand.Classification.TestCase], cand)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for testCase := range mocks {
		if _, ok := drivers[testCase]; !ok {
			slog.Warn("mock has no driver for its test case", "test_case", testCase)
		}
	}

	cases := make([]CaseRun, 0, len(drivers))
	for testCase, driver := range drivers {
		cases = append(cases, CaseRun{
			TestCase: testCase,
			Driver:   driver,
			Mocks:    mocks[testCase],
		})
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].TestCase < cases[j].TestCase })

	return cases, nil
}

// selected reports whether rel falls under one of the requested paths. An
// empty selection keeps everything.
func selected(rel m.Path, paths []string) bool {
	if len(paths) == 0 {
		return true
	}

	for _, p := range paths {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if string(rel) == p || strings.HasPrefix(string(rel), p+"/") {
			return true
		}
	}

	return false
}

func (w *workflow) refuseStaleBackups(root string) error {
	backups, err := swap.FindBackups(root)
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		return nil
	}

	locations := make([]string, 0, len(backups))
	for _, b := range backups {
		locations = append(locations, b.Path)
	}

	return fmt.Errorf("stale swap backups present (%s); run `mockdock recover` before testing", strings.Join(locations, ", "))
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (m.ExecResult, error) {
	root, err := filepath.Abs(args.Root)
	if err != nil {
		return m.ExecResult{}, fmt.Errorf("resolve root %s: %w", args.Root, err)
	}

	spec, err := w.cfg.Command(config.CommandRun)
	if err != nil {
		return m.ExecResult{}, err
	}

	spec.Args = append(append([]string{}, spec.Args...), args.ExtraArgs...)

	return w.executor.Execute(ctx, spec, map[string]string{"root_dir": root}, root)
}

// Report reloads the journaled results of the most recent test run and
// renders them without re-executing anything.
func (w *workflow) Report(ctx context.Context, args ReportArgs) (m.RunSummary, error) {
	root, err := filepath.Abs(args.Root)
	if err != nil {
		return m.RunSummary{}, fmt.Errorf("resolve root %s: %w", args.Root, err)
	}

	reports, err := w.store.LoadReports(root)
	if err != nil {
		return m.RunSummary{}, fmt.Errorf("load reports for %s: %w", root, err)
	}

	summary := m.RunSummary{Reports: reports}

	if err := w.ui.DisplaySummary(ctx, summary); err != nil {
		return summary, err
	}

	return summary, nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) ([]m.Candidate, error) {
	root, err := filepath.Abs(args.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", args.Root, err)
	}

	resolver, err := w.cfg.Resolver()
	if err != nil {
		return nil, err
	}

	discovery := discover.New(resolver, w.cfg.Ignores)

	var candidates []m.Candidate

	err = discovery.Walk(ctx, root, func(cand m.Candidate) error {
		if selected(cand.RelPath, args.Paths) {
			candidates = append(candidates, cand)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].RelPath < candidates[j].RelPath })

	if err := w.ui.DisplayCandidates(ctx, candidates); err != nil {
		return nil, err
	}

	return candidates, nil
}
