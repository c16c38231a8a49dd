package cmd

import (
	"github.com/spf13/cobra"

	"mockdock.dev/pkg/mockdock/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [paths...]",
		Short: "List discovered drivers and mocks",
		Long: `Walk the current directory, classify every path against the configured
driver and mock patterns, and print the resulting test cases and mock
targets. Optional path arguments restrict the listing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.List(cmd.Context(), domain.ListArgs{
				Root:  ".",
				Paths: args,
			})

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
