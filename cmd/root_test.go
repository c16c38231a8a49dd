package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockdock.dev/pkg/mockdock/internal/controller"
)

func TestParseSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseSlogLevel("debug", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, parseSlogLevel("WARNING", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseSlogLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.Level(-4), parseSlogLevel("-4", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("nonsense", slog.LevelInfo))
}

func TestSelectUIAutoFallsBackToSimple(t *testing.T) {
	cmd := baseRootCmd()
	cmd.SetOut(&bytes.Buffer{})

	// A buffer is not a terminal, so auto mode resolves to the simple UI.
	ui := selectUI(cmd)
	_, isSimple := ui.(*controller.SimpleUI)
	assert.True(t, isSimple)
}

func TestRootCmd_HelpByDefault(t *testing.T) {
	out := &bytes.Buffer{}

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "mockdock")
}
