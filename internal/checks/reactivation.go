package checks

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/admon/internal/models"
)

// reactivationMinConversions filters out paused campaigns with too little
// history to judge.
const reactivationMinConversions = 5.0

// ReactivationCheck finds paused campaigns whose historical performance
// beats the current enabled-campaign average. This is an opportunity
// surfaced at low severity, not a failure.
type ReactivationCheck struct{}

// ID returns "reactivation".
func (c *ReactivationCheck) ID() string { return "reactivation" }

// Run executes the check over the last 90 days.
func (c *ReactivationCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	yesterday := env.Now.AddDate(0, 0, -1)
	quarterStart := env.Now.AddDate(0, 0, -90)

	q := fmt.Sprintf(
		"SELECT campaign.name, campaign.status, metrics.cost_micros, metrics.conversions, metrics.conversions_value "+
			"FROM campaign WHERE campaign.status IN ('ENABLED', 'PAUSED') AND %s",
		dateRange(quarterStart, yesterday))
	rows, err := env.Platform.Query(ctx, q)
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("reactivation query: %w", err)
	}

	type campaignPerf struct {
		name        string
		cost        float64
		conversions float64
		value       float64
	}

	var enabledCost, enabledConversions, enabledValue float64
	var paused []campaignPerf
	for _, row := range rows {
		perf := campaignPerf{
			name:        row.Str("campaign.name"),
			cost:        row.Float("metrics.cost_micros") / 1e6,
			conversions: row.Float("metrics.conversions"),
			value:       row.Float("metrics.conversions_value"),
		}
		if row.Str("campaign.status") == "ENABLED" {
			enabledCost += perf.cost
			enabledConversions += perf.conversions
			enabledValue += perf.value
		} else {
			paused = append(paused, perf)
		}
	}

	if enabledCost == 0 || enabledConversions == 0 {
		return okResult(c.ID(), "no enabled-campaign baseline to compare against"), nil
	}

	enabledROAS := enabledValue / enabledCost
	enabledCPA := enabledCost / enabledConversions

	var candidates []string
	for _, p := range paused {
		if p.conversions < reactivationMinConversions || p.cost == 0 {
			continue
		}
		// ROAS decides where conversion values exist; CPA otherwise.
		if enabledValue > 0 && p.value > 0 {
			if p.value/p.cost > enabledROAS {
				candidates = append(candidates, p.name)
			}
		} else if p.cost/p.conversions < enabledCPA {
			candidates = append(candidates, p.name)
		}
	}

	details := map[string]any{
		"enabled_roas": enabledROAS,
		"enabled_cpa":  enabledCPA,
		"candidates":   candidates,
	}

	if len(candidates) == 0 {
		res := okResult(c.ID(), "no paused campaigns outperform the enabled average")
		res.Details = details
		return res, nil
	}

	return models.CheckResult{
		CheckID: c.ID(),
		Status:  models.CheckWarning,
		Count:   len(candidates),
		Details: details,
		Alert: &models.AlertData{
			Title: fmt.Sprintf("%d paused campaigns beat the live average", len(candidates)),
			ShortDescription: fmt.Sprintf(
				"%d paused campaigns historically outperformed the currently enabled average (CPA %s).",
				len(candidates), formatMoney(env.Tenant.Currency, enabledCPA)),
			Impact: "Potential efficient volume left on the table; this is an opportunity, not a failure.",
			SuggestedActions: []string{
				"Review why each candidate campaign was paused",
				"Reactivate candidates with a limited test budget",
				"Compare their landing pages against current offers",
			},
			Severity: models.SeverityInfo,
			Details:  details,
		},
	}, nil
}
