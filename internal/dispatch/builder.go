package dispatch

import (
	"fmt"
	"strings"

	"github.com/good-yellow-bee/admon/internal/models"
)

// BuildMetricTask renders an anomaly result into a tracker task: a title
// encoding severity, tenant, metric and date, and a description with the
// metrics comparison table, the diagnosis, and the remediation checklist.
func BuildMetricTask(result *models.AnomalyResult) Task {
	title := fmt.Sprintf("[%s] %s — %s anomaly (%s)",
		result.Severity, result.TenantName, result.Metric, result.Date)

	var b strings.Builder
	fmt.Fprintf(&b, "## %s anomaly for %s\n\n", result.Metric, result.TenantName)

	b.WriteString("| | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Baseline | %.2f |\n", result.Baseline)
	fmt.Fprintf(&b, "| Actual (%s) | %.2f |\n", result.Date, result.Actual)
	fmt.Fprintf(&b, "| Change | %+.1f%% |\n", result.DeltaPct)
	fmt.Fprintf(&b, "| Severity | %s |\n", result.Severity)
	fmt.Fprintf(&b, "| Reason | %s |\n\n", result.Reason)

	if result.DiagnosisHint != "" {
		fmt.Fprintf(&b, "**Likely cause:** %s\n\n", result.DiagnosisHint)
	}

	writeChecklist(&b, result.Checklist)

	return Task{
		Name:        title,
		Description: b.String(),
		Priority:    result.Severity.TaskPriority(),
		Tags:        []string{"admon", "metric-anomaly", strings.ToLower(string(result.Severity))},
	}
}

// BuildCheckTask renders a check finding into a tracker task.
func BuildCheckTask(tenant models.Tenant, date string, result *models.CheckResult) Task {
	alert := result.Alert
	title := fmt.Sprintf("[%s] %s — %s (%s)",
		alert.Severity, tenant.Name, alert.Title, date)

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", alert.Title)
	fmt.Fprintf(&b, "%s\n\n", alert.ShortDescription)
	if alert.Impact != "" {
		fmt.Fprintf(&b, "**Impact:** %s\n\n", alert.Impact)
	}

	writeChecklist(&b, alert.SuggestedActions)

	if len(alert.Details) > 0 {
		b.WriteString("\n<details><summary>Raw data</summary>\n\n")
		for k, v := range alert.Details {
			fmt.Fprintf(&b, "- %s: %v\n", k, v)
		}
		b.WriteString("\n</details>\n")
	}

	return Task{
		Name:        title,
		Description: b.String(),
		Priority:    alert.Severity.TaskPriority(),
		Tags:        []string{"admon", result.CheckID, strings.ToLower(string(alert.Severity))},
	}
}

func writeChecklist(b *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("**Next steps:**\n")
	for _, item := range items {
		fmt.Fprintf(b, "- [ ] %s\n", item)
	}
}
