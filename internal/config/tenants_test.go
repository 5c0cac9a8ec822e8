package config

import (
	"strings"
	"testing"
)

func TestLoadTenants(t *testing.T) {
	doc := `
tenants:
  - id: acme
    name: Acme GmbH
    currency: EUR
    monitoring_enabled: true
    metrics: [sessions, conversions]
    checks: [billing, cost_increase]
    thresholds:
      sessions:
        warning_pct: 15
  - id: beta
    name: Beta Ltd
    monitoring_enabled: false
`
	tenants, err := LoadTenants(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadTenants: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("tenants = %d, want 2", len(tenants))
	}

	acme := tenants[0]
	if acme.ID != "acme" || !acme.MonitoringEnabled {
		t.Errorf("acme = %+v", acme)
	}
	if len(acme.Metrics) != 2 || acme.Metrics[0] != "sessions" {
		t.Errorf("acme.Metrics = %v", acme.Metrics)
	}
	if acme.Thresholds["sessions"].WarningPct != 15 {
		t.Errorf("acme threshold = %+v", acme.Thresholds["sessions"])
	}
	if tenants[1].MonitoringEnabled {
		t.Error("beta should be disabled")
	}
}

func TestLoadTenantsRejectsDuplicates(t *testing.T) {
	doc := `
tenants:
  - id: acme
    name: Acme GmbH
  - id: acme
    name: Acme Again
`
	if _, err := LoadTenants(strings.NewReader(doc)); err == nil {
		t.Fatal("LoadTenants = nil, want duplicate-id error")
	}
}

func TestLoadTenantsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", "tenants:\n  - name: No ID\n"},
		{"missing name", "tenants:\n  - id: anon\n"},
		{"negative threshold", "tenants:\n  - id: acme\n    name: Acme\n    thresholds:\n      sessions:\n        warning_pct: -1\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTenants(strings.NewReader(tt.doc)); err == nil {
				t.Error("LoadTenants = nil, want error")
			}
		})
	}
}
