package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// Runner executes one rendered invocation and classifies its outcome. The
// context bounds the run; a context deadline counts as a timeout, not a
// failure to launch.
type Runner interface {
	Run(ctx context.Context, inv Invocation, workDir string) m.ExecResult
}

// HostRunnerAdapter runs invocations directly on the host using os/exec.
type HostRunnerAdapter struct{}

// NewHostRunnerAdapter constructs a HostRunnerAdapter.
func NewHostRunnerAdapter() *HostRunnerAdapter {
	return &HostRunnerAdapter{}
}

// Run executes the invocation in workDir and captures both streams.
func (a *HostRunnerAdapter) Run(ctx context.Context, inv Invocation, workDir string) m.ExecResult {
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "command", inv.Command, "args", inv.Args, "dir", workDir)

	err := cmd.Run()

	return classify(ctx, err, stdout.String(), stderr.String())
}

// classify maps an os/exec outcome onto the result taxonomy. The order
// matters: a deadline kill also surfaces as an *exec.ExitError, so the
// context is consulted first.
func classify(ctx context.Context, err error, stdout, stderr string) m.ExecResult {
	result := m.ExecResult{Stdout: stdout, Stderr: stderr}

	switch {
	case err == nil:
		result.Status = m.StatusSuccess
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Status = m.StatusTimedOut
		result.ExitCode = -1
		result.Err = ctx.Err()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Status = m.StatusNonZeroExit
			result.ExitCode = exitErr.ExitCode()
			result.Err = err
		} else {
			result.Status = m.StatusLaunchFailure
			result.ExitCode = -1
			result.Err = err
		}
	}

	return result
}
