package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mockdock.dev/pkg/mockdock/internal/domain"
	m "mockdock.dev/pkg/mockdock/internal/model"
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- extra args...]",
		Short: "Run the configured run command",
		Long: `Execute the run command from mockdock.yaml, on the host or in its
configured container image, without any mock swapping. Arguments after --
are appended to the configured ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			result, err := workflow.Run(cmd.Context(), domain.RunArgs{
				Root:      ".",
				ExtraArgs: args,
			})
			if err != nil {
				return err
			}

			cmd.Print(result.Stdout)
			cmd.PrintErr(result.Stderr)

			if result.Status != m.StatusSuccess {
				return fmt.Errorf("run command (%s): %w", result.Status, domain.ErrCommandFailed)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
