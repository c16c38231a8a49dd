// Package controller provides the user-facing output surfaces for test
// runs, discovery listings and recovery passes.
package controller

import (
	"context"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// UI defines the interface for displaying run progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// Start announces the beginning of a run with the number of test cases.
	Start(ctx context.Context, totalCases int)
	// CaseCompleted reports one finished test case.
	CaseCompleted(ctx context.Context, report m.TestReport)
	// DisplaySummary renders the aggregated results of a run.
	DisplaySummary(ctx context.Context, summary m.RunSummary) error
	// DisplayCandidates renders the classified discovery output.
	DisplayCandidates(ctx context.Context, candidates []m.Candidate) error
	// DisplayRecovered renders the outcome of a recovery pass.
	DisplayRecovered(ctx context.Context, backups []m.RecoveredBackup) error
}
