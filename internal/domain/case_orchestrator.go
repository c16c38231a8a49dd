package domain

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"mockdock.dev/pkg/mockdock/internal/adapter"
	"mockdock.dev/pkg/mockdock/internal/config"
	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/internal/swap"
)

// CaseRun is one unit of work: a driver test case and the mocks that govern
// it.
type CaseRun struct {
	TestCase string
	Driver   m.Candidate
	Mocks    []m.Candidate
}

// Orchestrator coordinates swapping a case's mock contents over their
// implementation targets and running the test command while the swaps hold.
type Orchestrator interface {
	// RunCase executes one test case. The returned error is non-nil only
	// for a restoration failure, which the caller must treat as fatal.
	RunCase(ctx context.Context, run CaseRun) (m.TestReport, error)
}

type orchestrator struct {
	spec     config.CommandSpec
	root     string
	swapper  *swap.Swapper
	executor adapter.Executor
	content  fs.FS
}

// NewOrchestrator constructs an Orchestrator for one test run. content
// provides the mock file bytes and is rooted at root.
func NewOrchestrator(spec config.CommandSpec, root string, swapper *swap.Swapper, executor adapter.Executor, content fs.FS) Orchestrator {
	return &orchestrator{
		spec:     spec,
		root:     root,
		swapper:  swapper,
		executor: executor,
		content:  content,
	}
}

// mockEntry is one prepared swap: the absolute target and the replacement
// bytes.
type mockEntry struct {
	target  string
	content []byte
}

func (o *orchestrator) RunCase(ctx context.Context, run CaseRun) (m.TestReport, error) {
	report := m.TestReport{
		TestCase: run.TestCase,
		Driver:   run.Driver.RelPath,
	}

	for _, mock := range run.Mocks {
		report.Mocks = append(report.Mocks, mock.RelPath)
	}

	entries, err := o.prepareMocks(run.Mocks)
	if err != nil {
		slog.Error("case setup failed", "test_case", run.TestCase, "error", err)

		report.Outcome = m.OutcomeSetupFailed
		report.Err = err.Error()
		report.ExitCode = -1

		return report, nil
	}

	bindings := o.bindings(run, entries)

	result, err := o.executeSwapped(ctx, entries, 0, bindings)

	return o.fillReport(report, result, err)
}

// prepareMocks reads each mock's replacement bytes and sorts the swaps by
// canonical target so nested lock acquisition has a global order and two
// cases sharing targets cannot deadlock.
func (o *orchestrator) prepareMocks(mocks []m.Candidate) ([]mockEntry, error) {
	entries := make([]mockEntry, 0, len(mocks))

	for _, mock := range mocks {
		data, err := fs.ReadFile(o.content, string(mock.RelPath))
		if err != nil {
			return nil, err
		}

		target, err := swap.Canonicalize(filepath.Join(o.root, string(mock.Classification.Target)))
		if err != nil {
			return nil, err
		}

		entries = append(entries, mockEntry{target: target, content: data})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].target < entries[j].target })

	return entries, nil
}

func (o *orchestrator) bindings(run CaseRun, entries []mockEntry) map[string]string {
	target := ""
	if len(entries) > 0 {
		target = entries[0].target
	}

	return map[string]string{
		"driver_file": string(run.Driver.RelPath),
		"test_case":   run.TestCase,
		"root_dir":    o.root,
		"target_file": target,
	}
}

// executeSwapped nests one swap transaction per mock entry, innermost being
// the command execution. Every level's restore runs regardless of what the
// levels inside it did.
func (o *orchestrator) executeSwapped(ctx context.Context, entries []mockEntry, depth int, bindings map[string]string) (m.ExecResult, error) {
	if depth == len(entries) {
		return o.executor.Execute(ctx, o.spec, bindings, o.root)
	}

	entry := entries[depth]

	return o.swapper.RunWithSwap(ctx, entry.target, entry.content, func(ctx context.Context) (m.ExecResult, error) {
		return o.executeSwapped(ctx, entries, depth+1, bindings)
	})
}

// fillReport maps the execution outcome onto the report taxonomy. A
// *swap.RestoreError is returned to the caller; everything else is absorbed
// into the report.
func (o *orchestrator) fillReport(report m.TestReport, result m.ExecResult, err error) (m.TestReport, error) {
	report.ExitCode = result.ExitCode
	report.Output = result.Stdout + result.Stderr

	var restoreErr *swap.RestoreError
	if errors.As(err, &restoreErr) {
		report.Outcome = m.OutcomeFailed
		report.Err = restoreErr.Error()

		return report, restoreErr
	}

	var setupErr *swap.SetupError
	if errors.As(err, &setupErr) {
		report.Outcome = m.OutcomeSetupFailed
		report.Err = setupErr.Error()
		report.ExitCode = -1

		return report, nil
	}

	if err != nil {
		report.Outcome = m.OutcomeLaunchFailure
		report.Err = err.Error()
		report.ExitCode = -1

		return report, nil
	}

	switch result.Status {
	case m.StatusSuccess:
		report.Outcome = m.OutcomePassed
	case m.StatusNonZeroExit:
		report.Outcome = m.OutcomeFailed
	case m.StatusTimedOut:
		report.Outcome = m.OutcomeTimedOut
	case m.StatusLaunchFailure:
		report.Outcome = m.OutcomeLaunchFailure
	}

	if result.Err != nil {
		report.Err = result.Err.Error()
	}

	return report, nil
}
