// Package history provides the metric dataset provider: daily metric
// values per tenant stored in ClickHouse, assembled into the evaluation
// dataset (yesterday's value plus a baseline window).
package history

import (
	"context"
	"sort"

	"github.com/good-yellow-bee/admon/internal/models"
)

// Provider supplies metric datasets for evaluation.
type Provider interface {
	// Dataset returns yesterday's value and the baseline window for a
	// tenant/metric. day is the evaluation day (YYYY-MM-DD); the baseline
	// covers the windowDays days preceding it.
	Dataset(ctx context.Context, tenantID, metric, day string, windowDays int) (models.MetricDataset, error)
}

// buildDataset assembles a dataset from raw daily points. Points may
// arrive unsorted; the evaluation day itself is excluded from the
// baseline. A missing evaluation-day point yields a zero value, which the
// evaluator classifies as a zero-value or insufficient-data case.
func buildDataset(tenantID, metric, day string, points []models.MetricPoint) models.MetricDataset {
	ds := models.MetricDataset{
		TenantID:  tenantID,
		Metric:    metric,
		Yesterday: models.MetricPoint{Date: day},
	}

	for _, p := range points {
		switch {
		case p.Date == day:
			ds.Yesterday = p
		case p.Date < day:
			ds.Baseline = append(ds.Baseline, p)
		}
	}

	sort.Slice(ds.Baseline, func(i, j int) bool {
		return ds.Baseline[i].Date < ds.Baseline[j].Date
	})
	ds.DaysAvailable = len(ds.Baseline)

	return ds
}
