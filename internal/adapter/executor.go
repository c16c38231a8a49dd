package adapter

import (
	"context"
	"time"

	"mockdock.dev/pkg/mockdock/internal/config"
	m "mockdock.dev/pkg/mockdock/internal/model"
)

// Executor renders a configured command and dispatches it to the host or a
// container, depending on whether the command names an image.
type Executor interface {
	Execute(ctx context.Context, spec config.CommandSpec, bindings map[string]string, workDir string) (m.ExecResult, error)
}

// CommandExecutor is the production Executor.
type CommandExecutor struct {
	host      Runner
	container *PodmanRunnerAdapter
	timeout   time.Duration
}

// NewCommandExecutor constructs a CommandExecutor. A zero timeout means
// commands run unbounded.
func NewCommandExecutor(timeout time.Duration) *CommandExecutor {
	return &CommandExecutor{
		host:      NewHostRunnerAdapter(),
		container: NewPodmanRunnerAdapter(),
		timeout:   timeout,
	}
}

// Execute renders spec against bindings and runs it rooted at workDir.
func (e *CommandExecutor) Execute(ctx context.Context, spec config.CommandSpec, bindings map[string]string, workDir string) (m.ExecResult, error) {
	inv, err := BuildInvocation(spec, bindings)
	if err != nil {
		return m.ExecResult{}, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if inv.Image == "" {
		return e.host.Run(ctx, inv, workDir), nil
	}

	if err := e.container.EnsureImage(ctx, inv.Image); err != nil {
		return m.ExecResult{Status: m.StatusLaunchFailure, ExitCode: -1, Err: err}, nil
	}

	return e.container.Run(ctx, inv, workDir), nil
}
