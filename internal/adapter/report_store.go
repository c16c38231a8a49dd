package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/pkg"
)

// reportsDir holds the journaled results of the most recent test run,
// relative to the project root.
const reportsDir = ".mockdock-reports"

// reportsFile is the journal inside reportsDir.
const reportsFile = "reports.gob"

// ReportStore persists and reloads the reports of a test run, keyed by the
// project root they belong to.
type ReportStore interface {
	SaveReports(root string, reports []m.TestReport) error
	LoadReports(root string) ([]m.TestReport, error)
}

// journalReportStore stores reports as a gob journal under the project's
// reports directory.
type journalReportStore struct{}

// NewReportStore constructs the journal-backed ReportStore.
func NewReportStore() ReportStore {
	return &journalReportStore{}
}

// ReportsPath returns the journal location for a project root.
func ReportsPath(root string) string {
	return filepath.Join(root, reportsDir, reportsFile)
}

// SaveReports replaces the stored reports for root.
func (s *journalReportStore) SaveReports(root string, reports []m.TestReport) error {
	dir := filepath.Join(root, reportsDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create reports directory %s: %w", dir, err)
	}

	journal, err := pkg.NewJournal[m.TestReport](ReportsPath(root))
	if err != nil {
		return err
	}

	defer func() { _ = journal.Close() }()

	return journal.AppendBatch(reports)
}

// LoadReports replays the stored reports for root.
func (s *journalReportStore) LoadReports(root string) ([]m.TestReport, error) {
	journal, err := pkg.OpenJournal[m.TestReport](ReportsPath(root))
	if err != nil {
		return nil, err
	}

	var reports []m.TestReport

	err = journal.Replay(func(_ uint64, report m.TestReport) error {
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
