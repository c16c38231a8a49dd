package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mockdock version",
		Long:  "Prints the mockdock build version, the VCS revision when available, and the Go toolchain it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("mockdock version unknown")
				return
			}

			version := info.Main.Version
			if version == "" {
				version = "devel"
			}

			revision := ""
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					revision = setting.Value
				}
			}

			if revision != "" {
				cmd.Printf("mockdock %s (%s, %s)\n", version, revision, info.GoVersion)
				return
			}

			cmd.Printf("mockdock %s (%s)\n", version, info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
