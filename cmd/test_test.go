package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockdock.dev/pkg/mockdock/internal/domain"
	m "mockdock.dev/pkg/mockdock/internal/model"
)

// stubWorkflow satisfies domain.Workflow with canned responses.
type stubWorkflow struct {
	summary    m.RunSummary
	testErr    error
	runResult  m.ExecResult
	runErr     error
	candidates []m.Candidate
	recovered  []m.RecoveredBackup

	gotTestArgs domain.TestArgs
	gotRunArgs  domain.RunArgs
}

func (s *stubWorkflow) Test(_ context.Context, args domain.TestArgs) (m.RunSummary, error) {
	s.gotTestArgs = args
	return s.summary, s.testErr
}

func (s *stubWorkflow) Run(_ context.Context, args domain.RunArgs) (m.ExecResult, error) {
	s.gotRunArgs = args
	return s.runResult, s.runErr
}

func (s *stubWorkflow) List(context.Context, domain.ListArgs) ([]m.Candidate, error) {
	return s.candidates, nil
}

func (s *stubWorkflow) Recover(context.Context, domain.RecoverArgs) ([]m.RecoveredBackup, error) {
	return s.recovered, nil
}

func (s *stubWorkflow) Report(context.Context, domain.ReportArgs) (m.RunSummary, error) {
	return s.summary, nil
}

func withStubWorkflow(t *testing.T, stub *stubWorkflow) {
	t.Helper()

	original := newWorkflow
	newWorkflow = func(*cobra.Command) (domain.Workflow, error) { return stub, nil }
	t.Cleanup(func() { newWorkflow = original })
}

func executeCommand(t *testing.T, sub *cobra.Command, args ...string) error {
	t.Helper()

	cmd := baseRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	return cmd.Execute()
}

func TestTestCmd_AllPassed(t *testing.T) {
	stub := &stubWorkflow{
		summary: m.RunSummary{Reports: []m.TestReport{
			{TestCase: "netclock.netclock", Outcome: m.OutcomePassed},
		}},
	}
	withStubWorkflow(t, stub)

	err := executeCommand(t, newTestCmd(), "test", "src/netclock")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/netclock"}, stub.gotTestArgs.Paths)
	assert.Equal(t, ".", stub.gotTestArgs.Root)
}

func TestTestCmd_FailuresSurfaceSentinel(t *testing.T) {
	stub := &stubWorkflow{testErr: domain.ErrTestsFailed}
	withStubWorkflow(t, stub)

	err := executeCommand(t, newTestCmd(), "test")
	assert.ErrorIs(t, err, domain.ErrTestsFailed)
}

func TestTestCmd_ConfigErrorPropagates(t *testing.T) {
	original := newWorkflow
	newWorkflow = buildWorkflow
	t.Cleanup(func() { newWorkflow = original })

	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	// No mockdock.yaml in the working directory.
	err = executeCommand(t, newTestCmd(), "test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTestsFailed)
}

func TestRunCmd_NonZeroExit(t *testing.T) {
	stub := &stubWorkflow{
		runResult: m.ExecResult{Status: m.StatusNonZeroExit, ExitCode: 4, Stderr: "boom\n"},
	}
	withStubWorkflow(t, stub)

	err := executeCommand(t, newRunCmd(), "run", "--", "extra")
	assert.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, []string{"extra"}, stub.gotRunArgs.ExtraArgs)
}

func TestRunCmd_Success(t *testing.T) {
	stub := &stubWorkflow{
		runResult: m.ExecResult{Status: m.StatusSuccess, Stdout: "hello\n"},
	}
	withStubWorkflow(t, stub)

	err := executeCommand(t, newRunCmd(), "run")
	require.NoError(t, err)
}

func TestListCmd(t *testing.T) {
	stub := &stubWorkflow{}
	withStubWorkflow(t, stub)

	require.NoError(t, executeCommand(t, newListCmd(), "list"))
}

func TestReportCmd(t *testing.T) {
	stub := &stubWorkflow{}
	withStubWorkflow(t, stub)

	require.NoError(t, executeCommand(t, newReportCmd(), "report"))
}

func TestRecoverCmd(t *testing.T) {
	stub := &stubWorkflow{}
	withStubWorkflow(t, stub)

	require.NoError(t, executeCommand(t, newRecoverCmd(), "recover", "--check"))
}
