package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/good-yellow-bee/admon/internal/monitor"
)

type fakeSource struct {
	summary *monitor.Summary
}

func (f *fakeSource) LastSummary() *monitor.Summary { return f.summary }

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func TestHealthz(t *testing.T) {
	srv := NewServer(":0", &fakeSource{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestReadyzAllHealthy(t *testing.T) {
	srv := NewServer(":0", &fakeSource{})
	srv.RegisterChecker(NewPingChecker("history", &fakePinger{}))
	srv.RegisterChecker(NewPingChecker("ledger", &fakePinger{}))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Checks["history"] != "ok" || body.Checks["ledger"] != "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestReadyzDependencyDown(t *testing.T) {
	srv := NewServer(":0", &fakeSource{})
	srv.RegisterChecker(NewPingChecker("history", &fakePinger{err: errors.New("connection refused")}))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var body healthResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Status != "not ready" {
		t.Errorf("status = %q, want not ready", body.Status)
	}
}

func TestLastRun(t *testing.T) {
	t.Run("before any run", func(t *testing.T) {
		srv := NewServer(":0", &fakeSource{})
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-run", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("after a run", func(t *testing.T) {
		srv := NewServer(":0", &fakeSource{summary: &monitor.Summary{
			RunID:         "run-1",
			Success:       true,
			AlertsCreated: 2,
		}})
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-run", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got monitor.Summary
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.RunID != "run-1" || got.AlertsCreated != 2 {
			t.Errorf("summary = %+v", &got)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(":0", &fakeSource{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty metrics exposition")
	}
}
