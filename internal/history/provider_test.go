package history

import (
	"testing"

	"github.com/good-yellow-bee/admon/internal/models"
)

func TestBuildDataset(t *testing.T) {
	points := []models.MetricPoint{
		{Date: "2024-06-12", Value: 95},
		{Date: "2024-06-14", Value: 105}, // unsorted on purpose
		{Date: "2024-06-13", Value: 100},
		{Date: "2024-06-15", Value: 40}, // evaluation day
	}

	ds := buildDataset("acme", "sessions", "2024-06-15", points)

	if ds.TenantID != "acme" || ds.Metric != "sessions" {
		t.Errorf("identity = %s/%s", ds.TenantID, ds.Metric)
	}
	if ds.Yesterday.Date != "2024-06-15" || ds.Yesterday.Value != 40 {
		t.Errorf("Yesterday = %+v", ds.Yesterday)
	}
	if ds.DaysAvailable != 3 {
		t.Errorf("DaysAvailable = %d, want 3", ds.DaysAvailable)
	}

	// baseline excludes the evaluation day and comes back sorted
	wantDates := []string{"2024-06-12", "2024-06-13", "2024-06-14"}
	if len(ds.Baseline) != len(wantDates) {
		t.Fatalf("baseline = %d points, want %d", len(ds.Baseline), len(wantDates))
	}
	for i, want := range wantDates {
		if ds.Baseline[i].Date != want {
			t.Errorf("baseline[%d].Date = %s, want %s", i, ds.Baseline[i].Date, want)
		}
	}
}

func TestBuildDatasetMissingEvaluationDay(t *testing.T) {
	points := []models.MetricPoint{
		{Date: "2024-06-13", Value: 100},
		{Date: "2024-06-14", Value: 100},
	}

	ds := buildDataset("acme", "sessions", "2024-06-15", points)

	// a missing day reads as zero, which the evaluator treats as a
	// zero-value or insufficient-data case
	if ds.Yesterday.Date != "2024-06-15" || ds.Yesterday.Value != 0 {
		t.Errorf("Yesterday = %+v, want zero point for 2024-06-15", ds.Yesterday)
	}
	if ds.DaysAvailable != 2 {
		t.Errorf("DaysAvailable = %d, want 2", ds.DaysAvailable)
	}
}

func TestBuildDatasetIgnoresFutureDates(t *testing.T) {
	points := []models.MetricPoint{
		{Date: "2024-06-14", Value: 100},
		{Date: "2024-06-16", Value: 500}, // after the evaluation day
	}

	ds := buildDataset("acme", "sessions", "2024-06-15", points)

	if ds.DaysAvailable != 1 {
		t.Errorf("DaysAvailable = %d, want 1", ds.DaysAvailable)
	}
	for _, p := range ds.Baseline {
		if p.Date >= "2024-06-15" {
			t.Errorf("baseline contains %s", p.Date)
		}
	}
}

func TestBuildDatasetEmpty(t *testing.T) {
	ds := buildDataset("acme", "sessions", "2024-06-15", nil)

	if len(ds.Baseline) != 0 || ds.DaysAvailable != 0 {
		t.Errorf("dataset = %+v, want empty baseline", ds)
	}
	if ds.Yesterday.Value != 0 {
		t.Errorf("Yesterday.Value = %v, want 0", ds.Yesterday.Value)
	}
}
