package cmd

import (
	"github.com/spf13/cobra"

	"mockdock.dev/pkg/mockdock/internal/domain"
)

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the results of the last test run",
		Long: `Reload the journaled reports written by the most recent mockdock test run
and render the summary again, without executing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.Report(cmd.Context(), domain.ReportArgs{Root: "."})

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
