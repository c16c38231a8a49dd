package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

func TestReportStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := NewReportStore()

	reports := []m.TestReport{
		{
			TestCase: "netclock.netclock",
			Driver:   "src/netclock/driver/netclock.sh",
			Mocks:    []m.Path{"src/netclock/mock/netclock.sh"},
			Outcome:  m.OutcomePassed,
			Output:   "ok",
		},
		{
			TestCase: "disk.disk",
			Driver:   "src/disk/driver/disk.sh",
			Outcome:  m.OutcomeFailed,
			ExitCode: 1,
			Err:      "exit status 1",
		},
	}

	require.NoError(t, store.SaveReports(root, reports))

	loaded, err := store.LoadReports(root)
	require.NoError(t, err)
	assert.Equal(t, reports, loaded)
}

func TestReportStoreSaveOverwrites(t *testing.T) {
	root := t.TempDir()
	store := NewReportStore()

	require.NoError(t, store.SaveReports(root, []m.TestReport{
		{TestCase: "old.case", Outcome: m.OutcomeFailed},
	}))
	require.NoError(t, store.SaveReports(root, []m.TestReport{
		{TestCase: "new.case", Outcome: m.OutcomePassed},
	}))

	loaded, err := store.LoadReports(root)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new.case", loaded[0].TestCase)
}

func TestReportStoreLoadWithoutRun(t *testing.T) {
	store := NewReportStore()

	_, err := store.LoadReports(t.TempDir())
	assert.Error(t, err)
}
