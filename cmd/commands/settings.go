package commands

// Command to print the effective settings
// Shows the result of defaults, config.yaml, .env, environment and flags

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Print the effective settings as YAML",
	Args:  cobra.NoArgs,
	RunE:  runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
