package models

import (
	"fmt"
	"time"
)

// Fingerprint identifies one anomaly instance that has already been
// alerted on. At most one task is ever created per key.
type Fingerprint struct {
	TenantID string `json:"tenant_id"`
	// SourceID is the metric name or check ID that produced the alert.
	SourceID  string    `json:"source_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	TaskID    string    `json:"task_id,omitempty"`
	TaskURL   string    `json:"task_url,omitempty"`
}

// Key returns the deterministic composite key for this fingerprint.
func (f *Fingerprint) Key() string {
	return FingerprintKey(f.TenantID, f.SourceID, f.Date, f.Severity)
}

// FingerprintKey builds the composite ledger key tenant:source:date:severity.
func FingerprintKey(tenantID, sourceID, date string, severity Severity) string {
	return fmt.Sprintf("%s:%s:%s:%s", tenantID, sourceID, date, severity)
}
