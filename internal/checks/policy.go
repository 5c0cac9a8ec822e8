package checks

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/admon/internal/models"
)

// adDisapprovalCriticalCount escalates the ad check when at least this
// many ads are blocked.
const adDisapprovalCriticalCount = 10

// AdDisapprovalCheck finds enabled ads whose creative is not approved.
type AdDisapprovalCheck struct{}

// ID returns "ad_disapprovals".
func (c *AdDisapprovalCheck) ID() string { return "ad_disapprovals" }

// Run executes the check.
func (c *AdDisapprovalCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	rows, err := env.Platform.Query(ctx,
		"SELECT ad.id, ad.name, policy_summary.approval_status, campaign.name "+
			"FROM ad WHERE ad.status = 'ENABLED' AND policy_summary.approval_status != 'APPROVED'")
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("ad disapproval query: %w", err)
	}

	if len(rows) == 0 {
		return okResult(c.ID(), "all enabled ads approved"), nil
	}

	byCampaign := make(map[string]int)
	byStatus := make(map[string]int)
	for _, row := range rows {
		byCampaign[row.Str("campaign.name")]++
		byStatus[row.Str("policy_summary.approval_status")]++
	}

	severity := models.SeverityWarning
	status := models.CheckWarning
	if len(rows) >= adDisapprovalCriticalCount {
		severity = models.SeverityCritical
		status = models.CheckError
	}

	return models.CheckResult{
		CheckID: c.ID(),
		Status:  status,
		Count:   len(rows),
		Details: map[string]any{
			"by_campaign": byCampaign,
			"by_status":   byStatus,
		},
		Alert: &models.AlertData{
			Title: fmt.Sprintf("%d ads not approved", len(rows)),
			ShortDescription: fmt.Sprintf(
				"%d enabled ads across %d campaigns are disapproved or limited.",
				len(rows), len(byCampaign)),
			Impact: "Affected ads are not serving; campaign delivery is reduced.",
			SuggestedActions: []string{
				"Open the policy manager and review each disapproval reason",
				"Fix or appeal policy violations",
				"Pause unfixable ads and replace the creative",
			},
			Severity: severity,
			Details:  map[string]any{"by_campaign": byCampaign, "by_status": byStatus},
		},
	}, nil
}

// primaryAssetTypes are high-value asset types whose disapproval escalates
// the asset check.
var primaryAssetTypes = map[string]bool{
	"SITELINK": true,
}

// AssetDisapprovalCheck finds disapproved ad assets (extensions).
type AssetDisapprovalCheck struct{}

// ID returns "asset_disapprovals".
func (c *AssetDisapprovalCheck) ID() string { return "asset_disapprovals" }

// Run executes the check.
func (c *AssetDisapprovalCheck) Run(ctx context.Context, env Env) (models.CheckResult, error) {
	rows, err := env.Platform.Query(ctx,
		"SELECT asset.id, asset.type, policy_summary.approval_status "+
			"FROM asset WHERE policy_summary.approval_status = 'DISAPPROVED'")
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("asset disapproval query: %w", err)
	}

	if len(rows) == 0 {
		return okResult(c.ID(), "no disapproved assets"), nil
	}

	byType := make(map[string]int)
	primaryAffected := false
	for _, row := range rows {
		assetType := row.Str("asset.type")
		byType[assetType]++
		if primaryAssetTypes[assetType] {
			primaryAffected = true
		}
	}

	severity := models.SeverityWarning
	status := models.CheckWarning
	if primaryAffected {
		severity = models.SeverityCritical
		status = models.CheckError
	}

	return models.CheckResult{
		CheckID: c.ID(),
		Status:  status,
		Count:   len(rows),
		Details: map[string]any{"by_type": byType, "primary_affected": primaryAffected},
		Alert: &models.AlertData{
			Title: fmt.Sprintf("%d ad assets disapproved", len(rows)),
			ShortDescription: fmt.Sprintf(
				"%d assets are disapproved; sitelinks affected: %t.",
				len(rows), primaryAffected),
			Impact: "Disapproved assets stop showing, reducing ad rank and click-through rate.",
			SuggestedActions: []string{
				"Review each asset's policy violation",
				"Edit and resubmit disapproved sitelinks first",
				"Remove assets that repeatedly fail review",
			},
			Severity: severity,
			Details:  map[string]any{"by_type": byType},
		},
	}, nil
}
