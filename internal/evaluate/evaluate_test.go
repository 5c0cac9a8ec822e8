package evaluate

import (
	"fmt"
	"math"
	"testing"

	"github.com/good-yellow-bee/admon/internal/models"
)

// dataset builds a dataset for "2024-06-15" with the given baseline values
// on consecutive preceding days.
func dataset(metric string, actual float64, baseline ...float64) models.MetricDataset {
	ds := models.MetricDataset{
		TenantID:      "acme",
		Metric:        metric,
		Yesterday:     models.MetricPoint{Date: "2024-06-15", Value: actual},
		DaysAvailable: len(baseline),
	}
	for i, v := range baseline {
		ds.Baseline = append(ds.Baseline, models.MetricPoint{
			Date:  fmt.Sprintf("2024-06-%02d", 8+i),
			Value: v,
		})
	}
	return ds
}

func TestBaseline(t *testing.T) {
	tests := []struct {
		name   string
		points []models.MetricPoint
		want   float64
	}{
		{"empty window", nil, 0},
		{"single point", []models.MetricPoint{{Value: 42}}, 42},
		{"mean of window", []models.MetricPoint{{Value: 100}, {Value: 200}, {Value: 300}}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Baseline(tt.points); got != tt.want {
				t.Errorf("Baseline() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeltaPct(t *testing.T) {
	tests := []struct {
		name             string
		actual, baseline float64
		want             float64
	}{
		{"both zero", 0, 0, 0},
		{"zero baseline nonzero actual", 50, 0, 100},
		{"increase", 150, 100, 50},
		{"decrease", 50, 100, -50},
		{"no change", 100, 100, 0},
		{"drop to zero", 0, 100, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaPct(tt.actual, tt.baseline)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DeltaPct(%v, %v) = %v, want %v", tt.actual, tt.baseline, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	th := models.Threshold{WarningPct: 20, CriticalPct: 40, MinBaseline: 10}
	opts := Options{MinDays: 3}

	tests := []struct {
		name         string
		ds           models.MetricDataset
		th           models.Threshold
		wantSeverity models.Severity
		wantReason   models.Reason
		wantDir      models.Direction
	}{
		{
			name:         "within normal bounds",
			ds:           dataset("sessions", 110, 100, 100, 100, 100, 100, 100, 100),
			th:           th,
			wantSeverity: models.SeverityNone,
			wantReason:   models.ReasonNoAnomaly,
		},
		{
			name:         "warning threshold is inclusive",
			ds:           dataset("sessions", 120, 100, 100, 100, 100, 100, 100, 100),
			th:           th,
			wantSeverity: models.SeverityWarning,
			wantReason:   models.ReasonPercentageDeviation,
			wantDir:      models.DirectionIncrease,
		},
		{
			name:         "critical threshold is inclusive",
			ds:           dataset("sessions", 60, 100, 100, 100, 100, 100, 100, 100),
			th:           th,
			wantSeverity: models.SeverityCritical,
			wantReason:   models.ReasonPercentageDeviation,
			wantDir:      models.DirectionDecrease,
		},
		{
			name:         "just below warning threshold",
			ds:           dataset("sessions", 119, 100, 100, 100),
			th:           th,
			wantSeverity: models.SeverityNone,
			wantReason:   models.ReasonNoAnomaly,
		},
		{
			name:         "critical metric drops to zero",
			ds:           dataset("sessions", 0, 100, 100, 100, 100, 100, 100, 100),
			th:           th,
			wantSeverity: models.SeverityCritical,
			wantReason:   models.ReasonZeroValue,
			wantDir:      models.DirectionDecrease,
		},
		{
			name:         "zero value fires even on sparse history",
			ds:           dataset("conversions", 0, 50),
			th:           th,
			wantSeverity: models.SeverityCritical,
			wantReason:   models.ReasonZeroValue,
			wantDir:      models.DirectionDecrease,
		},
		{
			name:         "non-critical metric at zero is not a zero-value alert",
			ds:           dataset("engagement_rate", 0, 0.5, 0.5, 0.5, 0.5),
			th:           models.Threshold{WarningPct: 20, CriticalPct: 40},
			wantSeverity: models.SeverityCritical,
			wantReason:   models.ReasonPercentageDeviation,
			wantDir:      models.DirectionDecrease,
		},
		{
			name:         "sparse history suppresses percentage alerts",
			ds:           dataset("sessions", 30, 100, 100),
			th:           th,
			wantSeverity: models.SeverityNone,
			wantReason:   models.ReasonInsufficientData,
		},
		{
			name:         "tiny baseline suppresses percentage alerts",
			ds:           dataset("sessions", 2, 5, 5, 5, 5, 5, 5, 5),
			th:           th,
			wantSeverity: models.SeverityNone,
			wantReason:   models.ReasonBelowMinimumBaseline,
		},
		{
			name:         "zero baseline with activity",
			ds:           dataset("sessions", 80, 0, 0, 0, 0, 0, 0, 0),
			th:           models.Threshold{WarningPct: 20, CriticalPct: 40},
			wantSeverity: models.SeverityCritical,
			wantReason:   models.ReasonPercentageDeviation,
			wantDir:      models.DirectionIncrease,
		},
		{
			name:         "empty baseline window",
			ds:           dataset("sessions", 100),
			th:           th,
			wantSeverity: models.SeverityNone,
			wantReason:   models.ReasonInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.ds, tt.th, opts)
			if got.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if tt.wantDir != "" && got.Direction != tt.wantDir {
				t.Errorf("Direction = %q, want %q", got.Direction, tt.wantDir)
			}
			if got.IsAnomaly() && got.DiagnosisHint == "" {
				t.Error("anomaly result has no diagnosis hint")
			}
			if got.IsAnomaly() && len(got.Checklist) == 0 {
				t.Error("anomaly result has no checklist")
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	ds := dataset("revenue", 40, 100, 100, 100, 100)
	th := models.Threshold{WarningPct: 20, CriticalPct: 40, MinBaseline: 10}
	opts := Options{MinDays: 3}

	first := Evaluate(ds, th, opts)
	second := Evaluate(ds, th, opts)

	if first.Severity != second.Severity || first.Reason != second.Reason || first.DeltaPct != second.DeltaPct {
		t.Errorf("Evaluate is not deterministic: %+v vs %+v", first, second)
	}
}

func TestEvaluateCustomZeroSet(t *testing.T) {
	// With an override set, sessions is no longer zero-escalated.
	opts := Options{MinDays: 3, CriticalZeroMetrics: map[string]bool{"clicks": true}}
	th := models.Threshold{WarningPct: 20, CriticalPct: 40, MinBaseline: 10}

	got := Evaluate(dataset("sessions", 0, 100, 100, 100, 100), th, opts)
	if got.Reason != models.ReasonPercentageDeviation {
		t.Errorf("Reason = %q, want percentage_deviation", got.Reason)
	}

	got = Evaluate(dataset("clicks", 0, 100, 100, 100, 100), th, opts)
	if got.Reason != models.ReasonZeroValue {
		t.Errorf("Reason = %q, want zero_value", got.Reason)
	}
}
