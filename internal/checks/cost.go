package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/good-yellow-bee/admon/internal/models"
)

// Cost check thresholds.
const (
	costWarningPct  = 20.0
	costCriticalPct = 40.0
	// costMinConversions is the minimum conversion count required in both
	// windows for a CPA comparison to be statistically meaningful.
	costMinConversions = 10.0
)

// CostIncreaseCheck compares the current 7-day cost per conversion against
// the previous 7 days. The previous period is derived by subtracting the
// current-period aggregates from a single 14-day fetch, which halves query
// volume; if attribution data is retroactively revised between the two
// queries the derived previous period can skew slightly.
type CostIncreaseCheck struct{}

// ID returns "cost_increase".
func (c *CostIncreaseCheck) ID() string { return "cost_increase" }

// Run executes the check.
func (c *CostIncreaseCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	yesterday := env.Now.AddDate(0, 0, -1)
	weekStart := env.Now.AddDate(0, 0, -7)
	twoWeekStart := env.Now.AddDate(0, 0, -14)

	current, err := c.fetchAggregates(ctx, env, weekStart, yesterday)
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("cost check current period: %w", err)
	}
	fourteen, err := c.fetchAggregates(ctx, env, twoWeekStart, yesterday)
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("cost check 14-day period: %w", err)
	}

	previous := periodAggregates{
		Cost:        fourteen.Cost - current.Cost,
		Conversions: fourteen.Conversions - current.Conversions,
	}

	details := map[string]any{
		"current_cost":         current.Cost,
		"current_conversions":  current.Conversions,
		"previous_cost":        previous.Cost,
		"previous_conversions": previous.Conversions,
	}

	if current.Conversions < costMinConversions || previous.Conversions < costMinConversions {
		res := okResult(c.ID(), "not enough conversions for a reliable CPA comparison")
		res.Details = details
		return res, nil
	}

	currentCPA := current.Cost / current.Conversions
	previousCPA := previous.Cost / previous.Conversions
	increasePct := (currentCPA - previousCPA) / previousCPA * 100

	details["current_cpa"] = currentCPA
	details["previous_cpa"] = previousCPA
	details["increase_pct"] = increasePct

	if increasePct < costWarningPct {
		res := okResult(c.ID(), fmt.Sprintf("CPA change %+.1f%% within bounds", increasePct))
		res.Details = details
		return res, nil
	}

	severity := models.SeverityWarning
	status := models.CheckWarning
	if increasePct >= costCriticalPct {
		severity = models.SeverityCritical
		status = models.CheckError
	}

	extraCost := (currentCPA - previousCPA) * current.Conversions
	return models.CheckResult{
		CheckID: c.ID(),
		Status:  status,
		Count:   1,
		Details: details,
		Alert: &models.AlertData{
			Title: fmt.Sprintf("Cost per conversion up %.0f%%", increasePct),
			ShortDescription: fmt.Sprintf(
				"CPA rose from %s to %s over the last 7 days (+%.1f%%).",
				formatMoney(env.Tenant.Currency, previousCPA),
				formatMoney(env.Tenant.Currency, currentCPA),
				increasePct),
			Impact: fmt.Sprintf("Roughly %s additional spend for the same conversion volume this week.",
				formatMoney(env.Tenant.Currency, extraCost)),
			SuggestedActions: []string{
				"Review search term reports for new expensive queries",
				"Check recent bid strategy or budget changes",
				"Compare auction insights for new competitors",
				"Inspect conversion lag before concluding CPA really rose",
			},
			Severity: severity,
			Details:  details,
		},
	}, nil
}

// periodAggregates holds summed cost and conversions for one window.
type periodAggregates struct {
	Cost        float64
	Conversions float64
}

func (c *CostIncreaseCheck) fetchAggregates(ctx context.Context, env Env, from, to time.Time) (periodAggregates, error) {
	q := fmt.Sprintf(
		"SELECT metrics.cost_micros, metrics.conversions FROM campaign WHERE %s",
		dateRange(from, to))
	rows, err := env.Platform.Query(ctx, q)
	if err != nil {
		return periodAggregates{}, err
	}

	var agg periodAggregates
	for _, row := range rows {
		agg.Cost += row.Float("metrics.cost_micros") / 1e6
		agg.Conversions += row.Float("metrics.conversions")
	}
	return agg, nil
}
