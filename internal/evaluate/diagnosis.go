package evaluate

import "github.com/good-yellow-bee/admon/internal/models"

// metricClass groups metrics sharing a diagnosis playbook.
type metricClass string

const (
	classTraffic    metricClass = "traffic"
	classConversion metricClass = "conversion"
	classRevenue    metricClass = "revenue"
	classEngagement metricClass = "engagement"
)

// metricClasses maps known metric names to their class. Unknown metrics
// fall back to the traffic playbook.
var metricClasses = map[string]metricClass{
	"sessions":        classTraffic,
	"users":           classTraffic,
	"pageviews":       classTraffic,
	"conversions":     classConversion,
	"conversion_rate": classConversion,
	"revenue":         classRevenue,
	"engagement_rate": classEngagement,
	"bounce_rate":     classEngagement,
}

// diagnosis is a canned cause hint plus an ordered remediation checklist.
// Static domain knowledge, not statistically derived.
type diagnosis struct {
	hint      string
	checklist []string
}

// diagKey addresses one entry of the diagnosis table.
type diagKey struct {
	class     metricClass
	direction models.Direction
	zero      bool
}

var diagnoses = map[diagKey]diagnosis{
	{classTraffic, models.DirectionDecrease, true}: {
		hint: "Traffic stopped entirely; tracking code removal or a site outage are the most likely causes.",
		checklist: []string{
			"Verify the site is reachable and not showing an error page",
			"Check that the analytics tag still fires on the homepage",
			"Check ad account status and campaign delivery",
			"Review recent deployments or CMS plugin updates",
		},
	},
	{classTraffic, models.DirectionDecrease, false}: {
		hint: "Traffic dropped sharply; check paid campaign delivery and organic source changes.",
		checklist: []string{
			"Compare traffic by source/medium against the previous week",
			"Check paused or budget-capped campaigns",
			"Review search impression share for ranking losses",
			"Check for robots.txt or indexing changes",
		},
	},
	{classTraffic, models.DirectionIncrease, false}: {
		hint: "Unusual traffic spike; confirm it is genuine demand and not bot or referral spam.",
		checklist: []string{
			"Inspect top sources for unknown referrers",
			"Compare bounce rate and session duration of the new traffic",
			"Check for an unannounced campaign launch or press mention",
		},
	},
	{classConversion, models.DirectionDecrease, true}: {
		hint: "Conversions stopped recording; the funnel or the conversion tag is likely broken.",
		checklist: []string{
			"Place a test order / submit a test lead end to end",
			"Verify the conversion tag fires on the confirmation page",
			"Check payment provider status and error rates",
			"Review checkout-affecting deployments",
		},
	},
	{classConversion, models.DirectionDecrease, false}: {
		hint: "Conversion volume fell; inspect funnel steps and payment failures before assuming demand dropped.",
		checklist: []string{
			"Compare funnel step drop-off against the baseline week",
			"Check payment decline rates",
			"Verify promotion and pricing changes",
			"Segment by device for a mobile-specific breakage",
		},
	},
	{classConversion, models.DirectionIncrease, false}: {
		hint: "Conversion volume jumped; rule out duplicate tag firing before celebrating.",
		checklist: []string{
			"Check for duplicate conversion tag installs",
			"Verify a promotion or campaign explains the lift",
		},
	},
	{classRevenue, models.DirectionDecrease, true}: {
		hint: "Revenue stopped recording; verify e-commerce tracking and order flow immediately.",
		checklist: []string{
			"Confirm orders exist in the shop backend for yesterday",
			"Verify purchase-event values are sent to analytics",
			"Check payment provider incidents",
		},
	},
	{classRevenue, models.DirectionDecrease, false}: {
		hint: "Revenue fell; check average order value and transaction count separately.",
		checklist: []string{
			"Split the drop into transactions vs average order value",
			"Review expired promotions or price changes",
			"Check top-selling product availability",
		},
	},
	{classRevenue, models.DirectionIncrease, false}: {
		hint: "Revenue spiked; verify order values are not inflated by a tagging error.",
		checklist: []string{
			"Cross-check analytics revenue against the shop backend",
			"Look for duplicate purchase events",
		},
	},
	{classEngagement, models.DirectionDecrease, false}: {
		hint: "Engagement dropped; landing page or audience quality changes are typical causes.",
		checklist: []string{
			"Compare landing page load times",
			"Review recent landing page edits",
			"Check new traffic sources with low engagement",
		},
	},
	{classEngagement, models.DirectionIncrease, false}: {
		hint: "Engagement rose sharply; confirm measurement changes are not inflating it.",
		checklist: []string{
			"Check for event tracking changes",
			"Verify the engaged-session definition is unchanged",
		},
	},
}

// genericDiagnosis covers combinations absent from the table.
var genericDiagnosis = diagnosis{
	hint: "Metric deviated significantly from its baseline.",
	checklist: []string{
		"Compare the metric by segment against the baseline week",
		"Review recent account and website changes",
	},
}

// diagnose looks up the canned diagnosis for a triggered anomaly.
func diagnose(metric string, dir models.Direction, zero bool) diagnosis {
	class, ok := metricClasses[metric]
	if !ok {
		class = classTraffic
	}
	if d, ok := diagnoses[diagKey{class, dir, zero}]; ok {
		return d
	}
	// zero-value entries exist only for decrease; fall back to non-zero.
	if d, ok := diagnoses[diagKey{class, dir, false}]; ok {
		return d
	}
	return genericDiagnosis
}
