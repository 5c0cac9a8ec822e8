package dispatch

import (
	"strings"
	"testing"

	"github.com/good-yellow-bee/admon/internal/models"
)

func TestBuildMetricTask(t *testing.T) {
	result := &models.AnomalyResult{
		TenantID:      "acme",
		TenantName:    "Acme GmbH",
		Metric:        "sessions",
		Date:          "2024-06-15",
		Severity:      models.SeverityCritical,
		Baseline:      100,
		Actual:        40,
		DeltaPct:      -60,
		Direction:     models.DirectionDecrease,
		Reason:        models.ReasonPercentageDeviation,
		DiagnosisHint: "Traffic drops usually come from tracking or campaign delivery.",
		Checklist:     []string{"Check tag firing", "Check campaign status"},
	}

	task := BuildMetricTask(result)

	if want := "[CRITICAL] Acme GmbH — sessions anomaly (2024-06-15)"; task.Name != want {
		t.Errorf("Name = %q, want %q", task.Name, want)
	}
	if task.Priority != 1 {
		t.Errorf("Priority = %d, want 1", task.Priority)
	}

	for _, want := range []string{
		"| Baseline | 100.00 |",
		"| Actual (2024-06-15) | 40.00 |",
		"| Change | -60.0% |",
		"**Likely cause:**",
		"- [ ] Check tag firing",
		"- [ ] Check campaign status",
	} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q:\n%s", want, task.Description)
		}
	}

	wantTags := map[string]bool{"admon": true, "metric-anomaly": true, "critical": true}
	for _, tag := range task.Tags {
		if !wantTags[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
		delete(wantTags, tag)
	}
	if len(wantTags) > 0 {
		t.Errorf("missing tags: %v", wantTags)
	}
}

func TestBuildCheckTask(t *testing.T) {
	tenant := models.Tenant{ID: "acme", Name: "Acme GmbH", Currency: "EUR"}
	result := &models.CheckResult{
		CheckID: "ad_disapprovals",
		Status:  models.CheckError,
		Count:   12,
		Alert: &models.AlertData{
			Title:            "12 disapproved ads",
			ShortDescription: "12 enabled ads are currently disapproved.",
			Impact:           "Affected ad groups cannot serve.",
			SuggestedActions: []string{"Review policy details in the platform UI"},
			Severity:         models.SeverityCritical,
			Details:          map[string]any{"campaigns": 3},
		},
	}

	task := BuildCheckTask(tenant, "2024-06-15", result)

	if want := "[CRITICAL] Acme GmbH — 12 disapproved ads (2024-06-15)"; task.Name != want {
		t.Errorf("Name = %q, want %q", task.Name, want)
	}
	if task.Priority != 1 {
		t.Errorf("Priority = %d, want 1", task.Priority)
	}
	for _, want := range []string{
		"12 enabled ads are currently disapproved.",
		"**Impact:** Affected ad groups cannot serve.",
		"- [ ] Review policy details in the platform UI",
		"campaigns: 3",
	} {
		if !strings.Contains(task.Description, want) {
			t.Errorf("Description missing %q:\n%s", want, task.Description)
		}
	}
}

func TestBuildMetricTaskSeverityPriorities(t *testing.T) {
	tests := []struct {
		severity models.Severity
		want     int
	}{
		{models.SeverityCritical, 1},
		{models.SeverityWarning, 2},
		{models.SeverityInfo, 3},
	}

	for _, tt := range tests {
		result := &models.AnomalyResult{Severity: tt.severity, TenantName: "t", Metric: "m", Date: "2024-06-15"}
		if got := BuildMetricTask(result).Priority; got != tt.want {
			t.Errorf("priority for %s = %d, want %d", tt.severity, got, tt.want)
		}
	}
}
