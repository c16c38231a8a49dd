// Package cmd provides the root command and CLI setup for mockdock.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mockdock.dev/pkg/mockdock/internal/adapter"
	"mockdock.dev/pkg/mockdock/internal/config"
	"mockdock.dev/pkg/mockdock/internal/controller"
	"mockdock.dev/pkg/mockdock/internal/domain"
	"mockdock.dev/pkg/mockdock/internal/swap"
)

// outputFlag selects the UI: simple, tui, or auto.
var outputFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

// excludePatterns is a root-level flag adding ignore patterns on top of the
// configuration's.
var excludePatterns []string

// newWorkflow builds the production workflow for a command invocation.
// Tests swap it for a stub.
var newWorkflow = buildWorkflow

const rootLongDescription = `Mockdock runs each test case of a project against mock implementations by
temporarily swapping the mock file over the real one, executing the test
command (on the host or in a container), and restoring the original no
matter how the test ends.

Drivers identify test cases, mocks provide the substitute contents; both are
discovered by the path patterns in mockdock.yaml.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mockdock",
		Short: "Mock-swap test workflow orchestrator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag)
			swap.InstallSignalGuard()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func init() {
	configureRootFlags(rootCmd)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&outputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "output mode: simple, tui or auto")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude paths matching pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildWorkflow loads and validates the configuration and wires the
// production collaborators.
func buildWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	cfg, err := config.Load(configFileName)
	if err != nil {
		return nil, err
	}

	cfg.Ignores = append(cfg.Ignores, viper.GetStringSlice(excludeConfigKey)...)

	timeout := time.Duration(viper.GetInt64(testTimeoutConfigKey)) * time.Second
	lockWait := time.Duration(viper.GetInt64(lockWaitConfigKey)) * time.Second

	return domain.NewWorkflow(
		cfg,
		swap.NewSwapperWithLockWait(lockWait),
		adapter.NewCommandExecutor(timeout),
		adapter.NewReportStore(),
		selectUI(cmd),
	), nil
}

// selectUI picks the output surface: explicit flag value, or terminal
// detection in auto mode.
func selectUI(cmd *cobra.Command) controller.UI {
	switch viper.GetString(outputConfigKey) {
	case "tui":
		return controller.NewTUI(cmd.OutOrStdout())
	case "simple":
		return controller.NewSimpleUI(cmd)
	default:
		if controller.IsTerminal(cmd.OutOrStdout()) {
			return controller.NewTUI(cmd.OutOrStdout())
		}

		return controller.NewSimpleUI(cmd)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
//
// Exit status: 0 when everything passed, 1 when test cases failed, 2 for
// configuration, setup or restoration errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, domain.ErrTestsFailed) || errors.Is(err, domain.ErrCommandFailed) {
			os.Exit(1)
		}

		os.Exit(2)
	}
}
