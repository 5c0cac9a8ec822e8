package models

// CheckStatus is the outcome class of a platform check.
type CheckStatus string

const (
	// CheckOK means nothing was found.
	CheckOK CheckStatus = "ok"
	// CheckWarning means a degraded but non-critical finding.
	CheckWarning CheckStatus = "warning"
	// CheckError means a critical finding.
	CheckError CheckStatus = "error"
)

// CheckResult is the outcome of running one platform check for one tenant.
type CheckResult struct {
	CheckID string      `json:"check_id"`
	Status  CheckStatus `json:"status"`
	// Count is the number of offending entities found (ads, campaigns, ...).
	Count int `json:"count"`
	// Details carries the raw aggregates for audit and debugging.
	Details map[string]any `json:"details,omitempty"`
	// Alert is populated when the finding warrants a task; nil when ok.
	Alert *AlertData `json:"alert_data,omitempty"`
}

// IsAlert reports whether the result should produce an alert.
func (r *CheckResult) IsAlert() bool {
	return r.Status != CheckOK && r.Alert != nil
}

// FingerprintKeyFor returns the dedup key for this check result.
func (r *CheckResult) FingerprintKeyFor(tenantID, date string) string {
	sev := SeverityWarning
	if r.Alert != nil {
		sev = r.Alert.Severity
	}
	return FingerprintKey(tenantID, r.CheckID, date, sev)
}

// AlertData is the transient payload used to populate a tracker task.
type AlertData struct {
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description"`
	Impact           string         `json:"impact,omitempty"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
	Severity         Severity       `json:"severity"`
	Details          map[string]any `json:"details,omitempty"`
}
