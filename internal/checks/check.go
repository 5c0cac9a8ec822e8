// Package checks provides the platform check framework: self-contained
// detection routines for platform-specific failure modes (cost blowups,
// policy disapprovals, billing failures, tracking gaps) plus a flat
// registry dispatching through the Check interface. Checks query and
// classify only; whether an alert is raised is the orchestrator's call.
package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/good-yellow-bee/admon/internal/models"
	"github.com/good-yellow-bee/admon/internal/platform"
)

// Querier is the slice of the platform client checks depend on.
type Querier interface {
	Query(ctx context.Context, query string) ([]platform.Row, error)
	AccountSummary(ctx context.Context) (platform.Account, error)
}

// Env is the execution environment passed to a check.
type Env struct {
	Platform Querier
	Tenant   models.Tenant
	// Now anchors all date windows (useful for testing).
	Now time.Time
}

// Check is one platform-specific detection routine.
type Check interface {
	// ID returns the stable check identifier used in fingerprints.
	ID() string
	// Run queries the platform and classifies the findings.
	Run(ctx context.Context, env Env) (models.CheckResult, error)
}

// Registry holds checks in registration order.
type Registry struct {
	checks []Check
	byID   map[string]Check
}

// NewRegistry creates a registry with the given checks.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{byID: make(map[string]Check, len(checks))}
	for _, c := range checks {
		r.Register(c)
	}
	return r
}

// DefaultRegistry returns a registry with all built-in checks.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&CostIncreaseCheck{},
		&AdDisapprovalCheck{},
		&AssetDisapprovalCheck{},
		&BillingCheck{},
		&ConversionTrackingCheck{},
		&ReactivationCheck{},
	)
}

// Register appends a check. Later registrations with a duplicate ID replace
// the earlier one in lookups but keep the original run order.
func (r *Registry) Register(c Check) {
	if _, exists := r.byID[c.ID()]; !exists {
		r.checks = append(r.checks, c)
	}
	r.byID[c.ID()] = c
}

// Get returns a check by ID.
func (r *Registry) Get(id string) (Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns all checks in registration order.
func (r *Registry) All() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Enabled returns the checks enabled for a tenant. An empty tenant check
// list means all checks.
func (r *Registry) Enabled(tenant models.Tenant) []Check {
	if len(tenant.Checks) == 0 {
		return r.All()
	}
	var out []Check
	for _, id := range tenant.Checks {
		if c, ok := r.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// okResult builds the standard clean result for a check.
func okResult(checkID, message string) models.CheckResult {
	return models.CheckResult{
		CheckID: checkID,
		Status:  models.CheckOK,
		Details: map[string]any{"message": message},
	}
}

// formatMoney renders an amount in the tenant currency for impact lines.
func formatMoney(currency string, amount float64) string {
	if currency == "" {
		currency = "EUR"
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// dateRange renders an inclusive day range for query predicates.
func dateRange(from, to time.Time) string {
	return fmt.Sprintf("segments.date BETWEEN '%s' AND '%s'",
		from.Format(models.DateFormat), to.Format(models.DateFormat))
}
