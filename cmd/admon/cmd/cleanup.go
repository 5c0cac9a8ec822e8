package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/admon/internal/metrics"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune expired fingerprints from the ledger",
	Long: `Cleanup removes fingerprints older than the retention window so the
ledger does not grow without bound. The window defaults to the
configured ledger retention and can be overridden with --days.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (0 = use config)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	days := cleanupDays
	if days <= 0 {
		days = cfg.Ledger.RetentionDays
	}

	ctx := cmd.Context()
	removed, err := store.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup ledger: %w", err)
	}
	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	metrics.LedgerPruned.Add(float64(removed))

	size, _ := store.Size(ctx)
	fmt.Printf("Removed %d fingerprints older than %d days, %d remain\n", removed, days, size)
	return nil
}
