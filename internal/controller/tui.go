package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display. Long result
// sets are paged; short ones print straight through.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start announces the run.
func (p *TUI) Start(ctx context.Context, totalCases int) {
	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(p.output, "Running %d test case(s)\n", totalCases)
}

// CaseCompleted prints one finished case.
func (p *TUI) CaseCompleted(ctx context.Context, report m.TestReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(p.output, "%s %s\n", styleOutcome(report.Outcome), report.TestCase)
}

// DisplaySummary pages through the run results when they exceed the screen.
func (p *TUI) DisplaySummary(ctx context.Context, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newReportPagerModel(buildReportLines(summary), renderSummaryTable(summary))

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// DisplayCandidates prints the classified discovery output.
func (p *TUI) DisplayCandidates(ctx context.Context, candidates []m.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, cand := range candidates {
		switch cand.Classification.Kind {
		case m.Mock:
			fmt.Fprintf(p.output, "%s  %s  %s -> %s\n",
				cand.RelPath, cand.Classification.Kind, cand.Classification.TestCase, cand.Classification.Target)
		default:
			fmt.Fprintf(p.output, "%s  %s  %s\n",
				cand.RelPath, cand.Classification.Kind, cand.Classification.TestCase)
		}
	}

	fmt.Fprintf(p.output, "Total: %d classified path(s)\n", len(candidates))

	return nil
}

// DisplayRecovered prints each handled backup with its diff.
func (p *TUI) DisplayRecovered(ctx context.Context, backups []m.RecoveredBackup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(backups) == 0 {
		fmt.Fprintln(p.output, "No stale swap backups found")
		return nil
	}

	for _, backup := range backups {
		verb := "found"
		if backup.Restored {
			verb = "restored"
		}

		fmt.Fprintf(p.output, "%s %s (backup: %s)\n", verb, backup.Target, backup.BackupPath)

		if backup.Diff != "" {
			fmt.Fprintln(p.output, backup.Diff)
		}
	}

	return nil
}

// buildReportLines flattens reports into display lines: one header per case
// plus indented output for the cases that did not pass.
func buildReportLines(summary m.RunSummary) []string {
	var lines []string

	for _, report := range summary.Reports {
		lines = append(lines, fmt.Sprintf("%s %s (exit %d)", styleOutcome(report.Outcome), report.TestCase, report.ExitCode))

		if report.Outcome == m.OutcomePassed || report.Outcome == m.OutcomeSkipped {
			continue
		}

		if report.Err != "" {
			lines = append(lines, "  "+report.Err)
		}

		for _, out := range strings.Split(strings.TrimRight(report.Output, "\n"), "\n") {
			if out != "" {
				lines = append(lines, "  "+out)
			}
		}
	}

	return lines
}

// reportPagerModel is the Bubble Tea model paging over report lines with a
// fixed summary footer.
type reportPagerModel struct {
	lines    []string
	footer   string
	height   int
	width    int
	offset   int
	quitting bool
}

func newReportPagerModel(lines []string, footer string) reportPagerModel {
	return reportPagerModel{lines: lines, footer: footer}
}

func (rpm reportPagerModel) Init() tea.Cmd {
	return nil
}

func (rpm reportPagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rpm.height = msg.Height
		rpm.width = msg.Width

		return rpm, nil

	case tea.KeyMsg:
		return rpm.handleKeyPress(msg)
	}

	return rpm, nil
}

func (rpm reportPagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // We only handle specific navigation keys
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rpm.quitting = true
		return rpm, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		rpm.quitting = true
		return rpm, tea.Quit

	case "down", "j":
		rpm.offset = clamp(rpm.offset+1, 0, rpm.maxOffset())
		return rpm, nil

	case "up", "k":
		rpm.offset = clamp(rpm.offset-1, 0, rpm.maxOffset())
		return rpm, nil

	case "g", "home":
		rpm.offset = 0
		return rpm, nil

	case "G", "end":
		rpm.offset = rpm.maxOffset()
		return rpm, nil

	case "d", "pgdown":
		rpm.offset = clamp(rpm.offset+rpm.linesPerPage(), 0, rpm.maxOffset())
		return rpm, nil

	case "u", "pgup":
		rpm.offset = clamp(rpm.offset-rpm.linesPerPage(), 0, rpm.maxOffset())
		return rpm, nil
	}

	return rpm, nil
}

// linesPerPage calculates how many report lines fit on screen next to the
// footer table and navigation help.
func (rpm reportPagerModel) linesPerPage() int {
	if rpm.height == 0 {
		return 10
	}

	reserved := strings.Count(rpm.footer, "\n") + 4

	available := rpm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

func (rpm reportPagerModel) maxOffset() int {
	maxOff := len(rpm.lines) - rpm.linesPerPage()
	if maxOff < 0 {
		return 0
	}

	return maxOff
}

func (rpm reportPagerModel) needsPagination() bool {
	return rpm.height > 0 && len(rpm.lines) > rpm.linesPerPage()
}

func (rpm reportPagerModel) View() string {
	var b strings.Builder

	lines := rpm.lines
	if rpm.needsPagination() {
		start := clamp(rpm.offset, 0, rpm.maxOffset())

		end := start + rpm.linesPerPage()
		if end > len(lines) {
			end = len(lines)
		}

		lines = lines[start:end]
	}

	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(rpm.footer)

	if rpm.needsPagination() {
		fmt.Fprintf(&b, "\nLines %d-%d of %d\n", rpm.offset+1, rpm.offset+rpm.linesPerPage(), len(rpm.lines))
		b.WriteString("↑/k: up | ↓/j: down | g: top | G: bottom | q: quit\n")
	}

	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
