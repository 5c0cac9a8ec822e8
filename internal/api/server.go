// Package api exposes the monitoring service's HTTP surface: liveness
// and readiness probes, Prometheus metrics, and the last-run summary.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/good-yellow-bee/admon/internal/monitor"
)

// SummarySource provides the most recent run summary.
type SummarySource interface {
	LastSummary() *monitor.Summary
}

// Server serves the operational HTTP endpoints.
type Server struct {
	addr    string
	source  SummarySource
	httpSrv *http.Server

	mu       sync.RWMutex
	checkers []Checker
}

// NewServer creates the HTTP server.
func NewServer(addr string, source SummarySource) *Server {
	return &Server{addr: addr, source: source}
}

// RegisterChecker adds a dependency to the readiness probe.
func (s *Server) RegisterChecker(c Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, c)
}

// Router builds the chi router. Exposed separately so tests can drive
// the handlers without binding a socket.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/last-run", s.handleLastRun)

	return r
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("api: listening on %s", s.addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// healthResponse is the body of the probe endpoints.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReady checks all registered dependencies and returns 503 if any
// is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.mu.RLock()
	checkers := make([]Checker, len(s.checkers))
	copy(checkers, s.checkers)
	s.mu.RUnlock()

	results := make(map[string]string)
	healthy := true
	for _, c := range checkers {
		if err := c.Check(ctx); err != nil {
			results[c.Name()] = err.Error()
			healthy = false
		} else {
			results[c.Name()] = "ok"
		}
	}

	status := http.StatusOK
	body := healthResponse{Status: "ready", Checks: results}
	if !healthy {
		status = http.StatusServiceUnavailable
		body.Status = "not ready"
	}
	writeJSON(w, status, body)
}

// handleLastRun returns the most recent run summary as JSON, or 404
// before the first run completes.
func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	summary := s.source.LastSummary()
	if summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs yet"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
