package cmd

import (
	"github.com/spf13/cobra"

	"mockdock.dev/pkg/mockdock/internal/domain"
)

var recoverCheckFlag bool

// recoverCmd represents the recover command.
var recoverCmd = newRecoverCmd()

func newRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Restore implementation files from stale swap backups",
		Long: `Find backup artifacts left behind by an interrupted run, show what each
restore would change, and reinstate the preserved originals. With --check
the backups are only listed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.Recover(cmd.Context(), domain.RecoverArgs{
				Root:  ".",
				Check: recoverCheckFlag,
			})

			return err
		},
	}

	cmd.Flags().BoolVar(&recoverCheckFlag, "check", false, "list stale backups without restoring")

	return cmd
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
