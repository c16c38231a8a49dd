package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mockdock.dev/pkg/mockdock/internal/domain"
)

var testParallelFlag int
var testTimeoutFlag int64

// testCmd represents the test command.
var testCmd = newTestCmd()

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [paths...]",
		Short: "Run test cases with mocks swapped in",
		Long: `Discover drivers and mocks under the current directory, swap each test
case's mock contents over their implementation files, run the configured
test command, and restore the originals.

Optional path arguments restrict the run to candidates under those
root-relative paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.Test(cmd.Context(), domain.TestArgs{
				Root:     ".",
				Paths:    args,
				Parallel: viper.GetInt(testParallelConfigKey),
			})

			return err
		},
	}

	configureTestFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func configureTestFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&testParallelFlag, testParallelFlagName, "p", viper.GetInt(testParallelConfigKey), "number of parallel test case workers")
	bindFlagToConfig(cmd.Flags().Lookup(testParallelFlagName), testParallelConfigKey)

	cmd.Flags().Int64Var(&testTimeoutFlag, testTimeoutFlagName, viper.GetInt64(testTimeoutConfigKey), "per-command timeout in seconds")
	bindFlagToConfig(cmd.Flags().Lookup(testTimeoutFlagName), testTimeoutConfigKey)
}
