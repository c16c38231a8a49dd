package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

func TestHostRunnerAdapterSuccess(t *testing.T) {
	runner := NewHostRunnerAdapter()

	result := runner.Run(context.Background(), Invocation{Command: "sh", Args: []string{"-c", "echo out; echo err >&2"}}, t.TempDir())

	assert.Equal(t, m.StatusSuccess, result.Status)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.NoError(t, result.Err)
}

func TestHostRunnerAdapterNonZeroExit(t *testing.T) {
	runner := NewHostRunnerAdapter()

	result := runner.Run(context.Background(), Invocation{Command: "sh", Args: []string{"-c", "exit 7"}}, t.TempDir())

	assert.Equal(t, m.StatusNonZeroExit, result.Status)
	assert.Equal(t, 7, result.ExitCode)
	assert.Error(t, result.Err)
}

func TestHostRunnerAdapterLaunchFailure(t *testing.T) {
	runner := NewHostRunnerAdapter()

	result := runner.Run(context.Background(), Invocation{Command: "mockdock-no-such-binary"}, t.TempDir())

	assert.Equal(t, m.StatusLaunchFailure, result.Status)
	assert.Error(t, result.Err)
}

func TestHostRunnerAdapterTimeout(t *testing.T) {
	runner := NewHostRunnerAdapter()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := runner.Run(ctx, Invocation{Command: "sleep", Args: []string{"5"}}, t.TempDir())

	assert.Equal(t, m.StatusTimedOut, result.Status)
	assert.Error(t, result.Err)
}

func TestHostRunnerAdapterRunsInWorkDir(t *testing.T) {
	runner := NewHostRunnerAdapter()
	dir := t.TempDir()

	result := runner.Run(context.Background(), Invocation{Command: "pwd"}, dir)

	require.Equal(t, m.StatusSuccess, result.Status)
	assert.Contains(t, result.Stdout, dir)
}
