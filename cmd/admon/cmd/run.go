package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/admon/internal/monitor"
)

var (
	runDryRun      bool
	runConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one monitoring pass over all tenants",
	Long: `Run evaluates yesterday's metrics against rolling baselines and
executes the platform health checks for every enabled tenant, creating
tracker tasks for new findings. Already-alerted findings are skipped via
the fingerprint ledger.

With --dry-run, anomalies are evaluated and logged but no tasks are
created and no fingerprints are recorded.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "evaluate without creating tasks or fingerprints")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 1, "parallel tenant workers")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	app, err := buildApp(runDryRun)
	if err != nil {
		return err
	}
	defer app.Close()

	summary := app.runner.Run(cmd.Context(), monitor.RunOptions{
		DryRun:      runDryRun,
		Concurrency: runConcurrency,
	})

	fmt.Print(summary.Format())

	if !summary.Success {
		app.reportFatal("ledger save", fmt.Errorf("%d errors, see run %s", summary.ErrorCount(), summary.RunID))
		app.Close()
		os.Exit(1)
	}
	return nil
}
