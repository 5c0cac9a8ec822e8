package checks

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/admon/internal/models"
)

// Account status enums that stop all delivery.
var criticalAccountStatuses = map[string]bool{
	"SUSPENDED": true,
	"CLOSED":    true,
	"CANCELLED": true,
}

// Billing setup statuses that will stop delivery soon.
var degradedBillingStatuses = map[string]bool{
	"PENDING": true,
	"HELD":    true,
}

// BillingCheck inspects account and billing-setup status enums.
type BillingCheck struct{}

// ID returns "billing".
func (c *BillingCheck) ID() string { return "billing" }

// Run executes the check.
func (c *BillingCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	account, err := env.Platform.AccountSummary(ctx)
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("billing check: %w", err)
	}

	details := map[string]any{
		"account_status": account.Status,
		"billing_status": account.BillingStatus,
	}

	if criticalAccountStatuses[account.Status] {
		return models.CheckResult{
			CheckID: c.ID(),
			Status:  models.CheckError,
			Count:   1,
			Details: details,
			Alert: &models.AlertData{
				Title: fmt.Sprintf("Account %s", account.Status),
				ShortDescription: fmt.Sprintf(
					"The ad account status is %s; no ads are serving.", account.Status),
				Impact: "All campaign delivery is stopped until the account is restored.",
				SuggestedActions: []string{
					"Check the account notification center for the suspension reason",
					"Verify payment method validity and outstanding balances",
					"File an appeal or contact platform support",
				},
				Severity: models.SeverityCritical,
				Details:  details,
			},
		}, nil
	}

	if degradedBillingStatuses[account.BillingStatus] {
		return models.CheckResult{
			CheckID: c.ID(),
			Status:  models.CheckWarning,
			Count:   1,
			Details: details,
			Alert: &models.AlertData{
				Title: fmt.Sprintf("Billing setup %s", account.BillingStatus),
				ShortDescription: fmt.Sprintf(
					"The billing setup is in state %s; delivery may stop.", account.BillingStatus),
				Impact: "Campaigns will pause once the current billing cycle closes.",
				SuggestedActions: []string{
					"Confirm the primary payment method has not expired",
					"Approve any pending billing transfer requests",
					"Add a backup payment method",
				},
				Severity: models.SeverityWarning,
				Details:  details,
			},
		}, nil
	}

	res := okResult(c.ID(), "account and billing healthy")
	res.Details = details
	return res, nil
}
