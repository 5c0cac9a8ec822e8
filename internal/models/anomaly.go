// Package models contains the shared domain types for admon: metric
// datasets, anomaly classifications, check results, alert payloads, and
// the fingerprint ledger entries used for deduplication.
package models

import (
	"fmt"
	"time"
)

// DateFormat is the canonical day format used throughout admon.
const DateFormat = "2006-01-02"

// Severity represents the severity classification of an anomaly.
type Severity string

const (
	// SeverityNone means no alert should be raised.
	SeverityNone Severity = ""
	// SeverityInfo marks informational findings (opportunities, not failures).
	SeverityInfo Severity = "INFO"
	// SeverityWarning marks deviations above the warning threshold.
	SeverityWarning Severity = "WARNING"
	// SeverityCritical marks deviations above the critical threshold
	// and zero-value drops of business-critical metrics.
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity converts a string to Severity.
func ParseSeverity(s string) Severity {
	switch s {
	case "INFO", "info":
		return SeverityInfo
	case "WARNING", "warning":
		return SeverityWarning
	case "CRITICAL", "critical":
		return SeverityCritical
	default:
		return SeverityNone
	}
}

// TaskPriority maps a severity to the external tracker's priority scale
// (1 = urgent, 4 = low).
func (s Severity) TaskPriority() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// Direction describes which way a metric moved relative to its baseline.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNone     Direction = "none"
)

// Reason explains why an evaluation produced (or suppressed) an anomaly.
type Reason string

const (
	// ReasonPercentageDeviation means the delta crossed a configured threshold.
	ReasonPercentageDeviation Reason = "percentage_deviation"
	// ReasonZeroValue means a business-critical metric dropped to zero.
	ReasonZeroValue Reason = "zero_value"
	// ReasonNoAnomaly means the metric is within normal bounds.
	ReasonNoAnomaly Reason = "no_anomaly"
	// ReasonInsufficientData means too little history for percentage alerts.
	ReasonInsufficientData Reason = "insufficient_data"
	// ReasonBelowMinimumBaseline means the baseline is too small for
	// percentage swings to be statistically meaningful.
	ReasonBelowMinimumBaseline Reason = "below_minimum_baseline"
)

// MetricPoint is a single daily observation of a metric.
type MetricPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// MetricDataset holds yesterday's value plus the baseline window for one
// tenant/metric pair. Built fresh each run by the dataset provider.
type MetricDataset struct {
	TenantID      string        `json:"tenant_id"`
	Metric        string        `json:"metric"`
	Yesterday     MetricPoint   `json:"yesterday"`
	Baseline      []MetricPoint `json:"baseline_data"`
	DaysAvailable int           `json:"days_available"`
}

// Threshold holds the percentage thresholds and the minimum-baseline
// guardrail for one metric.
type Threshold struct {
	WarningPct  float64 `yaml:"warning_pct" json:"warning_pct"`
	CriticalPct float64 `yaml:"critical_pct" json:"critical_pct"`
	MinBaseline float64 `yaml:"min_baseline" json:"min_baseline"`
}

// Merge returns t with zero fields filled in from def.
func (t Threshold) Merge(def Threshold) Threshold {
	if t.WarningPct == 0 {
		t.WarningPct = def.WarningPct
	}
	if t.CriticalPct == 0 {
		t.CriticalPct = def.CriticalPct
	}
	if t.MinBaseline == 0 {
		t.MinBaseline = def.MinBaseline
	}
	return t
}

// AnomalyResult is the classified outcome of evaluating one metric for one
// tenant on one day.
type AnomalyResult struct {
	TenantID   string    `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Metric     string    `json:"metric"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Severity   Severity  `json:"severity,omitempty"`
	Baseline   float64   `json:"baseline"`
	Actual     float64   `json:"actual"`
	DeltaPct   float64   `json:"delta_pct"`
	Direction  Direction `json:"direction"`
	Reason     Reason    `json:"reason"`
	// DiagnosisHint is a short sentence explaining the likely cause.
	DiagnosisHint string `json:"diagnosis_hint,omitempty"`
	// Checklist is the ordered list of remediation steps.
	Checklist []string `json:"checklist_items,omitempty"`
}

// IsAnomaly reports whether the result should produce an alert.
func (r *AnomalyResult) IsAnomaly() bool {
	return r.Severity != SeverityNone
}

// FingerprintKey returns the deterministic dedup key for this result.
func (r *AnomalyResult) FingerprintKey() string {
	return FingerprintKey(r.TenantID, r.Metric, r.Date, r.Severity)
}

// Tenant is one managed account with monitoring configuration.
type Tenant struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Currency string `yaml:"currency,omitempty" json:"currency,omitempty"`
	// MonitoringEnabled gates the tenant out of scheduled runs entirely.
	MonitoringEnabled bool `yaml:"monitoring_enabled" json:"monitoring_enabled"`
	// Metrics lists the analytics metrics to evaluate. Empty means none.
	Metrics []string `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	// Checks lists enabled platform checks by ID. Empty means all.
	Checks []string `yaml:"checks,omitempty" json:"checks,omitempty"`
	// Thresholds are per-metric overrides merged over the global defaults.
	Thresholds map[string]Threshold `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	// PlatformToken overrides the global ad-platform credential. Empty
	// means the shared token is used.
	PlatformToken string `yaml:"platform_token,omitempty" json:"-"`
}

// Validate checks tenant configuration for errors.
func (t *Tenant) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tenant name is required for %q", t.ID)
	}
	for metric, th := range t.Thresholds {
		if th.WarningPct < 0 || th.CriticalPct < 0 || th.MinBaseline < 0 {
			return fmt.Errorf("negative threshold for tenant %q metric %q", t.ID, metric)
		}
	}
	return nil
}

// Yesterday returns the previous day in canonical format.
func Yesterday(now time.Time) string {
	return now.AddDate(0, 0, -1).Format(DateFormat)
}
