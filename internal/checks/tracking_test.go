package checks

import (
	"context"
	"testing"

	"github.com/good-yellow-bee/admon/internal/models"
	"github.com/good-yellow-bee/admon/internal/platform"
)

func campaignRow(name string, costMicros float64, clicks int64, conversions float64) platform.Row {
	return platform.Row{
		"campaign.name":       name,
		"metrics.cost_micros": costMicros,
		"metrics.clicks":      float64(clicks),
		"metrics.conversions": conversions,
	}
}

func TestConversionTrackingCheck(t *testing.T) {
	check := &ConversionTrackingCheck{}

	t.Run("account-wide blackout is critical", func(t *testing.T) {
		fq := &fakeQuerier{rowsFor: func(string) []platform.Row {
			return []platform.Row{
				campaignRow("Brand", 300e6, 120, 0),
				campaignRow("Generic", 80e6, 40, 0),
			}
		}}
		result, err := check.Run(context.Background(), testEnv(fq))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Status != models.CheckError {
			t.Errorf("Status = %q, want error", result.Status)
		}
		if result.Alert.Severity != models.SeverityCritical {
			t.Errorf("Severity = %q, want critical", result.Alert.Severity)
		}
	})

	t.Run("silent spenders warn", func(t *testing.T) {
		fq := &fakeQuerier{rowsFor: func(string) []platform.Row {
			return []platform.Row{
				campaignRow("Brand", 500e6, 300, 25),
				campaignRow("Generic", 120e6, 60, 0), // silent spender
				campaignRow("Tiny", 10e6, 5, 0),      // below floors, ignored
			}
		}}
		result, err := check.Run(context.Background(), testEnv(fq))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Status != models.CheckWarning {
			t.Errorf("Status = %q, want warning", result.Status)
		}
		if result.Count != 1 {
			t.Errorf("Count = %d, want 1", result.Count)
		}
	})

	t.Run("healthy tracking", func(t *testing.T) {
		fq := &fakeQuerier{rowsFor: func(string) []platform.Row {
			return []platform.Row{
				campaignRow("Brand", 500e6, 300, 25),
				campaignRow("Generic", 120e6, 60, 4),
			}
		}}
		result, err := check.Run(context.Background(), testEnv(fq))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Status != models.CheckOK {
			t.Errorf("Status = %q, want ok", result.Status)
		}
		if result.IsAlert() {
			t.Error("healthy result flagged as alert")
		}
	})

	t.Run("zero spend account stays quiet", func(t *testing.T) {
		fq := &fakeQuerier{rowsFor: func(string) []platform.Row { return nil }}
		result, err := check.Run(context.Background(), testEnv(fq))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Status != models.CheckOK {
			t.Errorf("Status = %q, want ok", result.Status)
		}
	})
}
