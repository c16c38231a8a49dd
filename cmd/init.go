package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mockdock.dev/pkg/mockdock/internal/config"
)

const configHeader = `# mockdock configuration.
#
# driver_patterns classify paths that identify test cases; mock_patterns
# classify substitute implementations. Patterns are anchored regular
# expressions over root-relative paths; $n in the templates refers to the
# pattern's capture groups. A mock replaces the file at its path with the
# innermost "mock" segment removed, unless mount_path overrides the target.
`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default mockdock.yaml configuration file",
		Long: `Create a mockdock.yaml in the current working directory populated with
commented defaults so it can be edited manually.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			if config.Exists(targetPath) {
				return fmt.Errorf("%s already exists; remove it first to regenerate", targetPath)
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("render default config: %w", err)
			}

			content := append([]byte(configHeader), data...)
			if err := os.WriteFile(targetPath, content, 0o644); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			cmd.Printf("wrote %s\n", targetPath)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
