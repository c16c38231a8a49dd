package model

// CommandStatus is the completion status of one executed command.
type CommandStatus int

const (
	// StatusSuccess means the command ran and exited zero.
	StatusSuccess CommandStatus = iota
	// StatusNonZeroExit means the command ran and exited non-zero.
	StatusNonZeroExit
	// StatusLaunchFailure means the process or container never started.
	StatusLaunchFailure
	// StatusTimedOut means the command was forcibly terminated on timeout.
	StatusTimedOut
)

// String returns a short status label.
func (s CommandStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNonZeroExit:
		return "non-zero exit"
	case StatusLaunchFailure:
		return "launch failure"
	case StatusTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// ExecResult captures the outcome of one command invocation. Stdout and
// Stderr are raw streams; the core does not parse them.
type ExecResult struct {
	Status   CommandStatus
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// TestOutcome classifies one test case run for reporting.
type TestOutcome int

const (
	// OutcomePassed means the test command succeeded.
	OutcomePassed TestOutcome = iota
	// OutcomeFailed means the test command exited non-zero.
	OutcomeFailed
	// OutcomeTimedOut means the test command exceeded the configured timeout.
	OutcomeTimedOut
	// OutcomeLaunchFailure means the process or container failed to start.
	OutcomeLaunchFailure
	// OutcomeSetupFailed means the swap transaction could not be prepared;
	// the target was never mutated.
	OutcomeSetupFailed
	// OutcomeSkipped means the case was not run, e.g. because its target is
	// poisoned by an earlier restoration failure.
	OutcomeSkipped
)

// String returns a short outcome label.
func (o TestOutcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeLaunchFailure:
		return "launch failure"
	case OutcomeSetupFailed:
		return "setup failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Passed reports whether an outcome counts toward a zero exit code.
func (o TestOutcome) Passed() bool { return o == OutcomePassed }

// TestReport is the recorded result of one test case execution. Fields are
// gob-friendly so reports can be journaled to disk.
type TestReport struct {
	TestCase string
	Driver   Path
	Mocks    []Path
	Outcome  TestOutcome
	ExitCode int
	Output   string
	Err      string
}

// RunSummary aggregates the reports of one test run.
type RunSummary struct {
	Reports []TestReport
}

// Counts returns the number of passed, failed and skipped cases. Every
// outcome that is neither passed nor skipped counts as failed.
func (s RunSummary) Counts() (passed, failed, skipped int) {
	for _, r := range s.Reports {
		switch {
		case r.Outcome == OutcomeSkipped:
			skipped++
		case r.Outcome.Passed():
			passed++
		default:
			failed++
		}
	}

	return passed, failed, skipped
}

// AllPassed reports whether every executed case succeeded.
func (s RunSummary) AllPassed() bool {
	_, failed, _ := s.Counts()
	return failed == 0
}

// RecoveredBackup describes one stale swap artifact handled by a recovery
// pass.
type RecoveredBackup struct {
	BackupPath Path
	Target     Path
	// Diff is a unified diff from the preserved original to the target's
	// current content.
	Diff string
	// Restored is false in check-only mode.
	Restored bool
}
