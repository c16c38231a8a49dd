package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockdock.dev/pkg/mockdock/internal/config"
	m "mockdock.dev/pkg/mockdock/internal/model"
)

func TestCommandExecutorHost(t *testing.T) {
	executor := NewCommandExecutor(0)

	result, err := executor.Execute(context.Background(), config.CommandSpec{
		Command: "sh",
		Args:    []string{"-c", "echo {test_case}"},
	}, map[string]string{"test_case": "netclock.netclock"}, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, m.StatusSuccess, result.Status)
	assert.Equal(t, "netclock.netclock\n", result.Stdout)
}

func TestCommandExecutorTimeout(t *testing.T) {
	executor := NewCommandExecutor(50 * time.Millisecond)

	result, err := executor.Execute(context.Background(), config.CommandSpec{
		Command: "sleep",
		Args:    []string{"5"},
	}, nil, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, m.StatusTimedOut, result.Status)
}

func TestCommandExecutorUnknownBinding(t *testing.T) {
	executor := NewCommandExecutor(0)

	_, err := executor.Execute(context.Background(), config.CommandSpec{
		Command: "sh",
		Args:    []string{"{driver_file}"},
	}, nil, t.TempDir())

	assert.Error(t, err)
}
