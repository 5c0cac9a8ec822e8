// Package monitor contains the orchestrator: it iterates tenants, runs
// the evaluator and the platform checks, gates alerts through the
// fingerprint ledger, dispatches tasks, and aggregates a run summary.
package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/admon/internal/checks"
	"github.com/good-yellow-bee/admon/internal/config"
	"github.com/good-yellow-bee/admon/internal/dispatch"
	"github.com/good-yellow-bee/admon/internal/evaluate"
	"github.com/good-yellow-bee/admon/internal/history"
	"github.com/good-yellow-bee/admon/internal/ledger"
	"github.com/good-yellow-bee/admon/internal/metrics"
	"github.com/good-yellow-bee/admon/internal/models"
)

// TaskCreator is the slice of the dispatch client the runner depends on.
type TaskCreator interface {
	CreateTask(ctx context.Context, task dispatch.Task) (dispatch.TaskRef, error)
}

// PlatformFactory builds the platform querier for one tenant. Separating
// construction lets tests inject fakes and keeps per-tenant credentials
// out of the runner.
type PlatformFactory func(tenant models.Tenant) (checks.Querier, error)

// RunOptions configures one run.
type RunOptions struct {
	// DryRun evaluates and logs but suppresses dispatch and ledger writes.
	DryRun bool
	// Concurrency bounds parallel tenant processing. Values below 1 mean
	// sequential, the default mode that respects third-party rate limits.
	Concurrency int
	// Now anchors the evaluation day; zero means time.Now().
	Now time.Time
}

// Runner is the monitoring orchestrator.
type Runner struct {
	cfg      *config.Config
	provider history.Provider
	registry *checks.Registry
	store    ledger.Store
	tracker  TaskCreator
	platform PlatformFactory

	mu      sync.RWMutex
	tenants []models.Tenant
	last    *Summary
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, tenants []models.Tenant, provider history.Provider,
	registry *checks.Registry, store ledger.Store, tracker TaskCreator, platform PlatformFactory) *Runner {
	return &Runner{
		cfg:      cfg,
		tenants:  tenants,
		provider: provider,
		registry: registry,
		store:    store,
		tracker:  tracker,
		platform: platform,
	}
}

// SetTenants replaces the tenant list (config hot reload).
func (r *Runner) SetTenants(tenants []models.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = tenants
}

// LastSummary returns the most recent run summary, nil before any run.
func (r *Runner) LastSummary() *Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Run executes one monitoring pass over all tenants. Per-tenant failures
// are isolated: they are logged and recorded but never abort other
// tenants. Only a failed ledger save marks the run as failed.
func (r *Runner) Run(ctx context.Context, opts RunOptions) *Summary {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	summary := &Summary{
		RunID:     uuid.New().String(),
		StartedAt: now,
		Success:   true,
		DryRun:    opts.DryRun,
	}

	r.mu.RLock()
	tenants := make([]models.Tenant, len(r.tenants))
	copy(tenants, r.tenants)
	r.mu.RUnlock()

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, tenant := range tenants {
		if !tenant.MonitoringEnabled {
			continue
		}
		tenant := tenant
		g.Go(func() error {
			r.processTenant(gctx, tenant, now, opts.DryRun, summary)
			return nil
		})
	}
	g.Wait()

	if !opts.DryRun {
		if err := r.store.Save(ctx); err != nil {
			// Fatal: losing the ledger silently risks unbounded
			// duplicate alerting on the next run.
			summary.Success = false
			summary.addError("ledger save: %v", err)
			log.Printf("monitor: FATAL ledger save failed: %v", err)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)

	result := "success"
	if !summary.Success {
		result = "failure"
	}
	metrics.RunsTotal.WithLabelValues(result).Inc()
	metrics.RunDuration.Observe(summary.Duration.Seconds())
	if size, err := r.store.Size(ctx); err == nil {
		metrics.LedgerSize.Set(float64(size))
	}

	r.mu.Lock()
	r.last = summary
	r.mu.Unlock()

	log.Printf("monitor: run %s done: %d clients, %d checks, %d created, %d skipped, %d errors",
		summary.RunID, summary.ClientsProcessed, summary.ChecksRun,
		summary.AlertsCreated, summary.AlertsSkipped, summary.ErrorCount())

	return summary
}

func (r *Runner) processTenant(ctx context.Context, tenant models.Tenant, now time.Time, dryRun bool, summary *Summary) {
	day := models.Yesterday(now)
	log.Printf("monitor: processing %s (%s) for %s", tenant.Name, tenant.ID, day)

	opts := evaluate.Options{MinDays: r.cfg.MinDaysForPercentageAlerts}

	for _, metric := range tenant.Metrics {
		if ctx.Err() != nil {
			summary.addError("tenant %s: %v", tenant.ID, ctx.Err())
			return
		}

		ds, err := r.provider.Dataset(ctx, tenant.ID, metric, day, r.cfg.BaselineWindowDays)
		if err != nil {
			summary.addError("tenant %s metric %s: fetch dataset: %v", tenant.ID, metric, err)
			log.Printf("monitor: tenant %s metric %s dataset fetch failed: %v", tenant.ID, metric, err)
			continue
		}

		th := r.cfg.ResolveThreshold(&tenant, metric)
		result := evaluate.Evaluate(ds, th, opts)
		result.TenantName = tenant.Name

		if r.cfg.Debug {
			log.Printf("monitor: %s/%s baseline=%.2f actual=%.2f delta=%+.1f%% severity=%q reason=%s",
				tenant.ID, metric, result.Baseline, result.Actual, result.DeltaPct, result.Severity, result.Reason)
		}

		if !result.IsAnomaly() {
			continue
		}

		task := dispatch.BuildMetricTask(&result)
		fp := &models.Fingerprint{
			TenantID: tenant.ID,
			SourceID: metric,
			Date:     result.Date,
			Severity: result.Severity,
		}
		r.raiseAlert(ctx, task, fp, dryRun, summary)
	}

	r.runChecks(ctx, tenant, day, now, dryRun, summary)
	summary.addClient()
	metrics.TenantsProcessed.Inc()
}

func (r *Runner) runChecks(ctx context.Context, tenant models.Tenant, day string, now time.Time, dryRun bool, summary *Summary) {
	enabled := r.registry.Enabled(tenant)
	if len(enabled) == 0 {
		return
	}

	client, err := r.platform(tenant)
	if err != nil {
		summary.addError("tenant %s: platform client: %v", tenant.ID, err)
		log.Printf("monitor: tenant %s platform client failed: %v", tenant.ID, err)
		return
	}

	env := checks.Env{Platform: client, Tenant: tenant, Now: now}

	for _, check := range enabled {
		if ctx.Err() != nil {
			summary.addError("tenant %s: %v", tenant.ID, ctx.Err())
			return
		}

		started := time.Now()
		result, err := check.Run(ctx, env)
		metrics.CheckDuration.WithLabelValues(check.ID()).Observe(time.Since(started).Seconds())
		summary.addCheck()

		if err != nil {
			metrics.CheckErrors.WithLabelValues(check.ID()).Inc()
			summary.addError("tenant %s check %s: %v", tenant.ID, check.ID(), err)
			log.Printf("monitor: tenant %s check %s failed: %v", tenant.ID, check.ID(), err)
			continue
		}

		if !result.IsAlert() {
			continue
		}

		task := dispatch.BuildCheckTask(tenant, day, &result)
		fp := &models.Fingerprint{
			TenantID: tenant.ID,
			SourceID: result.CheckID,
			Date:     day,
			Severity: result.Alert.Severity,
		}
		r.raiseAlert(ctx, task, fp, dryRun, summary)
	}
}

// raiseAlert gates one alert through the fingerprint ledger and
// dispatches it. Every anomaly ends up counted: created, skipped, or in
// the error list.
func (r *Runner) raiseAlert(ctx context.Context, task dispatch.Task, fp *models.Fingerprint, dryRun bool, summary *Summary) {
	key := fp.Key()

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		summary.addError("ledger lookup %s: %v", key, err)
		return
	}
	if exists {
		summary.addSkipped()
		metrics.AlertsSkipped.Inc()
		log.Printf("monitor: skipping %s, already alerted", key)
		return
	}

	if dryRun {
		summary.addCreated()
		log.Printf("monitor: [dry-run] would create task %q for %s", task.Name, key)
		return
	}

	ref, err := r.tracker.CreateTask(ctx, task)
	if err != nil {
		metrics.DispatchErrors.Inc()
		summary.addError("dispatch %s: %v", key, err)
		log.Printf("monitor: dispatch failed for %s: %v", key, err)
		return
	}

	fp.CreatedAt = time.Now().UTC()
	fp.TaskID = ref.ID
	fp.TaskURL = ref.URL
	if err := r.store.Set(ctx, fp); err != nil {
		if errors.Is(err, ledger.ErrDuplicate) {
			// Lost a race against a concurrent run; the task exists twice
			// in the tracker but the ledger stays consistent.
			summary.addSkipped()
			metrics.AlertsSkipped.Inc()
			return
		}
		summary.addError("ledger record %s: %v", key, err)
		return
	}

	summary.addCreated()
	metrics.AlertsCreated.Inc()
	log.Printf("monitor: created task %s (%s) for %s", ref.ID, ref.URL, key)
}
