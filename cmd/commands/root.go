package commands

// Root command for Cobra CLI
// Loads configuration and logging before any subcommand runs
// Registers all subcommands (line, bar, clear, settings)

import (
	"fmt"

	"mgchart/internal/config"
	"mgchart/internal/infra/log"

	"github.com/spf13/cobra"
)

// cfg is filled in by the root command before a subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mgchart",
	Short: "mgchart - finalise, save and show time series charts",
	Long: `mgchart plots time series from CSV files and finalises the charts:
titles, footers, reference lines and legends, then saving under a
deterministic file name in the chart directory.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(lineCmd)
	rootCmd.AddCommand(barCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(settingsCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := log.Init(log.Options{Dir: loaded.Log.Dir, Level: loaded.Log.Level}); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = loaded
	return nil
}
