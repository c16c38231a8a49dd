package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start announces the run.
func (s *SimpleUI) Start(ctx context.Context, totalCases int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running %d test case(s)\n", totalCases)
}

// CaseCompleted prints one finished case with a styled outcome label.
func (s *SimpleUI) CaseCompleted(ctx context.Context, report m.TestReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s %s\n", styleOutcome(report.Outcome), report.TestCase)

	if report.Outcome == m.OutcomePassed || report.Outcome == m.OutcomeSkipped {
		return
	}

	if report.Err != "" {
		s.printf("  %s\n", report.Err)
	}

	if report.Output != "" {
		s.printf("%s", report.Output)
	}
}

// DisplaySummary renders the aggregated run results as a table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary))

	return nil
}

func renderSummaryTable(summary m.RunSummary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Test Case", "Outcome", "Exit"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	for _, report := range summary.Reports {
		table.Append([]string{report.TestCase, report.Outcome.String(), strconv.Itoa(report.ExitCode)})
	}

	passed, failed, skipped := summary.Counts()
	table.SetFooter([]string{
		fmt.Sprintf("passed %d", passed),
		fmt.Sprintf("failed %d", failed),
		fmt.Sprintf("skipped %d", skipped),
	})

	table.Render()

	return buf.String()
}

// DisplayCandidates renders the classified discovery output as a table.
func (s *SimpleUI) DisplayCandidates(ctx context.Context, candidates []m.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Kind", "Test Case", "Target"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, cand := range candidates {
		table.Append([]string{
			string(cand.RelPath),
			cand.Classification.Kind.String(),
			cand.Classification.TestCase,
			string(cand.Classification.Target),
		})
	}

	table.Render()

	s.printf("%s", buf.String())
	s.printf("Total: %d classified path(s)\n", len(candidates))

	return nil
}

// DisplayRecovered prints each handled backup with its diff.
func (s *SimpleUI) DisplayRecovered(ctx context.Context, backups []m.RecoveredBackup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(backups) == 0 {
		s.printf("No stale swap backups found\n")
		return nil
	}

	for _, backup := range backups {
		verb := "found"
		if backup.Restored {
			verb = "restored"
		}

		s.printf("%s %s (backup: %s)\n", verb, backup.Target, backup.BackupPath)

		if backup.Diff != "" {
			s.printf("%s\n", backup.Diff)
		}
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func styleOutcome(outcome m.TestOutcome) string {
	label := outcome.String()

	switch outcome {
	case m.OutcomePassed:
		return passStyle.Render("✓ " + label)
	case m.OutcomeSkipped:
		return skipStyle.Render("- " + label)
	default:
		return failStyle.Render("✗ " + label)
	}
}
