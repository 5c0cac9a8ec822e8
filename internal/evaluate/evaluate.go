// Package evaluate turns a metric dataset into a severity classification.
// The decision chain runs in a fixed, documented priority: zero-value
// escalation, insufficient-data guardrail, minimum-baseline guardrail,
// then percentage deviation. The order is load-bearing: zero-value alerts
// must fire even on sparse history, and guardrails must suppress
// percentage alerts before thresholds are consulted.
package evaluate

import (
	"math"

	"github.com/good-yellow-bee/admon/internal/models"
)

// criticalZeroMetrics are business-critical metrics whose drop to zero is
// always a CRITICAL alert, regardless of available history.
var criticalZeroMetrics = map[string]bool{
	"sessions":    true,
	"conversions": true,
	"revenue":     true,
}

// Options configures an evaluation.
type Options struct {
	// MinDays guards percentage alerts on sparse history.
	MinDays int
	// CriticalZeroMetrics overrides the built-in critical-zero set.
	// Nil means the default set (sessions, conversions, revenue).
	CriticalZeroMetrics map[string]bool
}

// guard is one step of the ordered decision chain. It returns true when it
// decided the result (filling severity and reason on res).
type guard struct {
	name string
	fn   func(o Options, ds models.MetricDataset, th models.Threshold, res *models.AnomalyResult) bool
}

// guards run in priority order; the first one that decides wins.
var guards = []guard{
	{"zero_value", guardZeroValue},
	{"insufficient_data", guardInsufficientData},
	{"min_baseline", guardMinBaseline},
	{"percentage_deviation", guardPercentage},
}

// Evaluate classifies one metric dataset against its thresholds. Pure; the
// same inputs always produce the same result.
func Evaluate(ds models.MetricDataset, th models.Threshold, opts Options) models.AnomalyResult {
	baseline := Baseline(ds.Baseline)
	actual := ds.Yesterday.Value
	delta := DeltaPct(actual, baseline)

	res := models.AnomalyResult{
		TenantID:  ds.TenantID,
		Metric:    ds.Metric,
		Date:      ds.Yesterday.Date,
		Baseline:  baseline,
		Actual:    actual,
		DeltaPct:  delta,
		Direction: direction(delta),
	}

	for _, g := range guards {
		if g.fn(opts, ds, th, &res) {
			break
		}
	}

	if res.IsAnomaly() {
		d := diagnose(ds.Metric, res.Direction, res.Reason == models.ReasonZeroValue)
		res.DiagnosisHint = d.hint
		res.Checklist = d.checklist
	}

	return res
}

func guardZeroValue(o Options, ds models.MetricDataset, _ models.Threshold, res *models.AnomalyResult) bool {
	set := o.CriticalZeroMetrics
	if set == nil {
		set = criticalZeroMetrics
	}
	if !set[ds.Metric] {
		return false
	}
	if res.Actual != 0 || res.Baseline <= 0 {
		return false
	}
	res.Severity = models.SeverityCritical
	res.Reason = models.ReasonZeroValue
	res.Direction = models.DirectionDecrease
	return true
}

func guardInsufficientData(o Options, ds models.MetricDataset, _ models.Threshold, res *models.AnomalyResult) bool {
	if ds.DaysAvailable >= o.MinDays {
		return false
	}
	res.Severity = models.SeverityNone
	res.Reason = models.ReasonInsufficientData
	return true
}

func guardMinBaseline(_ Options, _ models.MetricDataset, th models.Threshold, res *models.AnomalyResult) bool {
	if res.Baseline >= th.MinBaseline {
		return false
	}
	res.Severity = models.SeverityNone
	res.Reason = models.ReasonBelowMinimumBaseline
	return true
}

func guardPercentage(_ Options, _ models.MetricDataset, th models.Threshold, res *models.AnomalyResult) bool {
	abs := math.Abs(res.DeltaPct)
	switch {
	case th.CriticalPct > 0 && abs >= th.CriticalPct:
		res.Severity = models.SeverityCritical
		res.Reason = models.ReasonPercentageDeviation
	case th.WarningPct > 0 && abs >= th.WarningPct:
		res.Severity = models.SeverityWarning
		res.Reason = models.ReasonPercentageDeviation
	default:
		res.Severity = models.SeverityNone
		res.Reason = models.ReasonNoAnomaly
	}
	return true
}

// Baseline returns the mean of the baseline window, 0 for an empty window.
func Baseline(points []models.MetricPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}

// DeltaPct returns the percentage change from baseline to actual.
// Both zero yields 0; a zero baseline with a non-zero actual yields +100.
func DeltaPct(actual, baseline float64) float64 {
	if baseline == 0 {
		if actual == 0 {
			return 0
		}
		return 100
	}
	return (actual - baseline) / baseline * 100
}

func direction(deltaPct float64) models.Direction {
	switch {
	case deltaPct > 0:
		return models.DirectionIncrease
	case deltaPct < 0:
		return models.DirectionDecrease
	default:
		return models.DirectionNone
	}
}
