package cmd

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/admon/internal/api"
	appconfig "github.com/good-yellow-bee/admon/internal/config"
	"github.com/good-yellow-bee/admon/internal/metrics"
	"github.com/good-yellow-bee/admon/internal/monitor"
	"github.com/good-yellow-bee/admon/pkg/config"
)

var serveConcurrency int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor on a schedule with HTTP endpoints",
	Long: `Serve starts admon as a long-running service: monitoring passes run
at the configured interval, the tenants file is hot-reloaded on change,
and health, readiness, metrics, and last-run summary endpoints are
served over HTTP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveConcurrency, "concurrency", 1, "parallel tenant workers per pass")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := buildApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(app.cfg.HTTPAddr, app.runner)
	srv.RegisterChecker(api.NewPingChecker("history", app.history))
	if pinger, ok := app.store.(api.Pinger); ok {
		srv.RegisterChecker(api.NewPingChecker("ledger", pinger))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	go func() {
		err := appconfig.WatchTenants(ctx, app.cfg.TenantsFile, app.runner.SetTenants)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("admon: tenants watcher stopped: %v", err)
		}
	}()

	interval := app.cfg.GetScheduleInterval()
	log.Printf("admon: scheduling runs every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runPass := func() {
		summary := app.runner.Run(ctx, monitor.RunOptions{Concurrency: serveConcurrency})
		if !summary.Success {
			app.reportFatal("scheduled run", errors.New(summary.Format()))
		}
	}

	// First pass immediately; the ticker covers subsequent ones.
	runPass()

	for {
		select {
		case <-ctx.Done():
			log.Printf("admon: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		case <-ticker.C:
			runPass()
		}
	}
}
