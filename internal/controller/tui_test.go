package controller

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

func TestBuildReportLines(t *testing.T) {
	summary := m.RunSummary{Reports: []m.TestReport{
		{TestCase: "netclock.netclock", Outcome: m.OutcomePassed},
		{TestCase: "disk.disk", Outcome: m.OutcomeFailed, ExitCode: 1, Output: "boom\nbang\n"},
	}}

	lines := buildReportLines(summary)

	// Passed case contributes its header only; the failed case carries its
	// output lines.
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "netclock.netclock")
	assert.Contains(t, lines[1], "disk.disk")
	assert.Contains(t, lines[2], "boom")
	assert.Contains(t, lines[3], "bang")
}

func TestReportPagerModelScrolling(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "line"
	}

	model := newReportPagerModel(lines, "footer\n")
	model.height = 20

	assert.True(t, model.needsPagination())

	perPage := model.linesPerPage()
	assert.Greater(t, perPage, 0)
	assert.Equal(t, 50-perPage, model.maxOffset())

	model.offset = clamp(model.offset+perPage, 0, model.maxOffset())
	assert.Equal(t, perPage, model.offset)

	model.offset = clamp(model.offset+1000, 0, model.maxOffset())
	assert.Equal(t, model.maxOffset(), model.offset)

	model.offset = clamp(model.offset-1000, 0, model.maxOffset())
	assert.Equal(t, 0, model.offset)
}

func TestReportPagerModelViewWithoutPagination(t *testing.T) {
	model := newReportPagerModel([]string{"one", "two"}, "footer\n")

	view := model.View()
	assert.Contains(t, view, "one")
	assert.Contains(t, view, "two")
	assert.Contains(t, view, "footer")
	assert.NotContains(t, view, "q: quit")
}

func TestTUIDisplaySummaryShortOutput(t *testing.T) {
	var buf bytes.Buffer
	ui := NewTUI(&buf)

	summary := m.RunSummary{Reports: []m.TestReport{
		{TestCase: "netclock.netclock", Outcome: m.OutcomePassed},
	}}

	require.NoError(t, ui.DisplaySummary(context.Background(), summary))
	assert.Contains(t, buf.String(), "netclock.netclock")
	assert.Contains(t, buf.String(), "passed 1")
}

func TestTUIDisplayCandidates(t *testing.T) {
	var buf bytes.Buffer
	ui := NewTUI(&buf)

	require.NoError(t, ui.DisplayCandidates(context.Background(), []m.Candidate{
		{
			RelPath: "src/netclock/mock/netclock.sh",
			Classification: m.Classification{
				Kind:     m.Mock,
				TestCase: "netclock.netclock",
				Target:   "src/netclock/netclock.sh",
			},
		},
	}))

	assert.Contains(t, buf.String(), "-> src/netclock/netclock.sh")
}

func TestIsTerminalOnBuffer(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
}
