package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/good-yellow-bee/admon/internal/checks"
	"github.com/good-yellow-bee/admon/internal/config"
	"github.com/good-yellow-bee/admon/internal/dispatch"
	"github.com/good-yellow-bee/admon/internal/history"
	"github.com/good-yellow-bee/admon/internal/ledger"
	"github.com/good-yellow-bee/admon/internal/models"
	"github.com/good-yellow-bee/admon/internal/monitor"
	"github.com/good-yellow-bee/admon/internal/platform"
	"github.com/good-yellow-bee/admon/internal/retry"
)

// app bundles the wired dependencies of one admon invocation.
type app struct {
	cfg     *config.Config
	tenants []models.Tenant
	store   ledger.Store
	history *history.Store
	tracker *dispatch.Client
	runner  *monitor.Runner
}

// loadConfig reads the config file given via --config and applies
// CLI-level overrides.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	cfg.Debug = debug
	return cfg, nil
}

// openLedger opens the fingerprint store selected by the config.
func openLedger(cfg *config.Config) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case "sqlite":
		store, err := ledger.OpenSQLStore(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return store, nil
	default:
		return ledger.OpenFileStore(cfg.Ledger.Path), nil
	}
}

// buildApp wires the full monitoring pipeline from configuration.
// With allowNoTracker (dry runs), a missing tracker config is tolerated
// since no tasks will be created anyway.
func buildApp(allowNoTracker bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tenants, err := config.LoadTenantsFromFile(cfg.TenantsFile)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}

	store, err := openLedger(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.History.Addr == "" {
		store.Close()
		return nil, fmt.Errorf("history.addr is required")
	}
	hist := history.NewStore(&history.Config{
		Addresses: []string{cfg.History.Addr},
		Database:  cfg.History.Database,
		Username:  cfg.History.Username,
		Password:  cfg.History.Password,
	})
	if err := hist.Open(); err != nil {
		store.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := hist.Migrate(); err != nil {
		hist.Close()
		store.Close()
		return nil, fmt.Errorf("migrate history store: %w", err)
	}

	retryPolicy := retry.Policy{
		MaxAttempts: cfg.RateLimit.RetryAttempts,
		BaseDelay:   cfg.RateLimit.RetryDelay(),
	}

	var tracker *dispatch.Client
	tracker, err = dispatch.NewClient(dispatch.Config{
		BaseURL: cfg.Tracker.BaseURL,
		Token:   cfg.Tracker.Token,
		ListID:  cfg.Tracker.ListID,
		Retry:   retryPolicy,
	})
	if err != nil {
		if !allowNoTracker {
			hist.Close()
			store.Close()
			return nil, fmt.Errorf("tracker client: %w", err)
		}
		log.Printf("admon: tracker not configured, continuing (dry-run): %v", err)
		tracker = nil
	}

	platformFactory := func(tenant models.Tenant) (checks.Querier, error) {
		token := cfg.Platform.Token
		if tenant.PlatformToken != "" {
			token = tenant.PlatformToken
		}
		return platform.NewClient(platform.Config{
			BaseURL:           cfg.Platform.BaseURL,
			Token:             token,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Retry:             retryPolicy,
		})
	}

	var creator monitor.TaskCreator
	if tracker != nil {
		creator = tracker
	}

	runner := monitor.NewRunner(cfg, tenants, hist, checks.DefaultRegistry(),
		store, creator, platformFactory)

	return &app{
		cfg:     cfg,
		tenants: tenants,
		store:   store,
		history: hist,
		tracker: tracker,
		runner:  runner,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Printf("admon: close history store: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("admon: close ledger: %v", err)
		}
	}
}

// reportFatal files a pipeline-failure task so a broken monitor does not
// fail silently. Best effort: dispatch problems are only logged.
func (a *app) reportFatal(stage string, cause error) {
	if a.tracker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := a.tracker.ReportPipelineFailure(ctx, stage, cause); err != nil {
		log.Printf("admon: report pipeline failure: %v", err)
	}
}
