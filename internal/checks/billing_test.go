package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/good-yellow-bee/admon/internal/models"
	"github.com/good-yellow-bee/admon/internal/platform"
)

func TestBillingCheck(t *testing.T) {
	tests := []struct {
		name       string
		account    platform.Account
		wantStatus models.CheckStatus
		wantSev    models.Severity
	}{
		{
			name:       "healthy account",
			account:    platform.Account{Status: "ENABLED", BillingStatus: "APPROVED"},
			wantStatus: models.CheckOK,
		},
		{
			name:       "suspended account is critical",
			account:    platform.Account{Status: "SUSPENDED", BillingStatus: "APPROVED"},
			wantStatus: models.CheckError,
			wantSev:    models.SeverityCritical,
		},
		{
			name:       "cancelled account is critical",
			account:    platform.Account{Status: "CANCELLED"},
			wantStatus: models.CheckError,
			wantSev:    models.SeverityCritical,
		},
		{
			name:       "pending billing setup warns",
			account:    platform.Account{Status: "ENABLED", BillingStatus: "PENDING"},
			wantStatus: models.CheckWarning,
			wantSev:    models.SeverityWarning,
		},
		{
			name:       "held billing setup warns",
			account:    platform.Account{Status: "ENABLED", BillingStatus: "HELD"},
			wantStatus: models.CheckWarning,
			wantSev:    models.SeverityWarning,
		},
	}

	check := &BillingCheck{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fq := &fakeQuerier{account: tt.account}
			result, err := check.Run(context.Background(), testEnv(fq))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", result.Status, tt.wantStatus)
			}
			if tt.wantSev != models.SeverityNone {
				if result.Alert == nil {
					t.Fatal("expected alert data")
				}
				if result.Alert.Severity != tt.wantSev {
					t.Errorf("Severity = %q, want %q", result.Alert.Severity, tt.wantSev)
				}
			}
		})
	}
}

func TestBillingCheckSummaryError(t *testing.T) {
	fq := &fakeQuerier{accountErr: errors.New("platform down")}
	if _, err := (&BillingCheck{}).Run(context.Background(), testEnv(fq)); err == nil {
		t.Error("Run = nil, want error")
	}
}
