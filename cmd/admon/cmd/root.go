// Package cmd contains the CLI commands for admon.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Used for flags
	configFile string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "admon",
	Short: "admon - Advertising account monitoring",
	Long: `admon watches advertising accounts across tenants: it compares
daily metrics against rolling baselines, runs account health checks
against the ad platform, and files deduplicated tasks in the team's
tracker when something degrades.

Examples:
  # One monitoring pass over all tenants
  admon run --config admon.yaml

  # Evaluate without creating tasks or recording fingerprints
  admon run --config admon.yaml --dry-run

  # Long-running mode: scheduler plus health/metrics endpoints
  admon serve --config admon.yaml

  # Prune fingerprints older than the retention window
  admon cleanup --config admon.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose evaluation logging")
}
