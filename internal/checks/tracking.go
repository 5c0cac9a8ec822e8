package checks

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/admon/internal/models"
)

// Floors below which a campaign's zero conversions are not significant.
const (
	trackingMinCost   = 50.0
	trackingMinClicks = 20
)

// ConversionTrackingCheck flags campaigns that spend and receive clicks
// but record zero conversions, and escalates when the whole account
// converts nothing despite spend.
type ConversionTrackingCheck struct{}

// ID returns "conversion_tracking".
func (c *ConversionTrackingCheck) ID() string { return "conversion_tracking" }

// Run executes the check over the last 7 days.
func (c *ConversionTrackingCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	yesterday := env.Now.AddDate(0, 0, -1)
	weekStart := env.Now.AddDate(0, 0, -7)

	q := fmt.Sprintf(
		"SELECT campaign.name, metrics.cost_micros, metrics.clicks, metrics.conversions "+
			"FROM campaign WHERE campaign.status = 'ENABLED' AND %s",
		dateRange(weekStart, yesterday))
	rows, err := env.Platform.Query(ctx, q)
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("tracking check query: %w", err)
	}

	var (
		totalCost        float64
		totalConversions float64
		silent           []string
		silentCost       float64
	)
	for _, row := range rows {
		cost := row.Float("metrics.cost_micros") / 1e6
		clicks := row.Int("metrics.clicks")
		conversions := row.Float("metrics.conversions")

		totalCost += cost
		totalConversions += conversions

		if conversions == 0 && cost >= trackingMinCost && clicks >= trackingMinClicks {
			silent = append(silent, row.Str("campaign.name"))
			silentCost += cost
		}
	}

	details := map[string]any{
		"total_cost":        totalCost,
		"total_conversions": totalConversions,
		"silent_campaigns":  silent,
	}

	// Whole-account blackout outranks individual campaign gaps.
	if totalConversions == 0 && totalCost >= trackingMinCost {
		return models.CheckResult{
			CheckID: c.ID(),
			Status:  models.CheckError,
			Count:   len(rows),
			Details: details,
			Alert: &models.AlertData{
				Title: "No conversions recorded account-wide",
				ShortDescription: fmt.Sprintf(
					"%s spent in 7 days with zero recorded conversions across the account.",
					formatMoney(env.Tenant.Currency, totalCost)),
				Impact: "Either conversion tracking is broken or all spend is wasted; bidding automation is flying blind.",
				SuggestedActions: []string{
					"Fire a test conversion and verify it is recorded",
					"Check the conversion tag on the confirmation page",
					"Verify conversion actions are not set to 'secondary'",
					"Check for a recent site relaunch that removed the tag",
				},
				Severity: models.SeverityCritical,
				Details:  details,
			},
		}, nil
	}

	if len(silent) > 0 {
		return models.CheckResult{
			CheckID: c.ID(),
			Status:  models.CheckWarning,
			Count:   len(silent),
			Details: details,
			Alert: &models.AlertData{
				Title: fmt.Sprintf("%d campaigns spend without converting", len(silent)),
				ShortDescription: fmt.Sprintf(
					"%d campaigns spent %s with meaningful click volume but zero conversions in 7 days.",
					len(silent), formatMoney(env.Tenant.Currency, silentCost)),
				Impact: fmt.Sprintf("%s of weekly spend currently produces no measured results.",
					formatMoney(env.Tenant.Currency, silentCost)),
				SuggestedActions: []string{
					"Check landing pages of the affected campaigns",
					"Verify conversion tracking covers these campaign goals",
					"Review search terms for intent mismatch",
					"Pause or restructure campaigns that cannot convert",
				},
				Severity: models.SeverityWarning,
				Details:  details,
			},
		}, nil
	}

	res := okResult(c.ID(), "conversion tracking looks healthy")
	res.Details = details
	return res, nil
}
