package monitor

import (
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// Summary aggregates the outcome of one monitoring run.
type Summary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ms"`
	// Success is false only when the fingerprint ledger could not be
	// saved: losing the idempotency record risks unbounded duplicate
	// alerting. Per-tenant errors alone do not fail the run.
	Success          bool     `json:"success"`
	DryRun           bool     `json:"dry_run"`
	ClientsProcessed int      `json:"clients_processed"`
	ChecksRun        int      `json:"checks_run"`
	AlertsCreated    int      `json:"alerts_created"`
	AlertsSkipped    int      `json:"alerts_skipped"`
	Errors           []string `json:"errors,omitempty"`

	mu sync.Mutex
}

func (s *Summary) addClient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClientsProcessed++
}

func (s *Summary) addCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ChecksRun++
}

func (s *Summary) addCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AlertsCreated++
}

func (s *Summary) addSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AlertsSkipped++
}

func (s *Summary) addError(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// ErrorCount returns the number of recorded errors.
func (s *Summary) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Errors)
}

// Format renders the summary as a human-readable table.
func (s *Summary) Format() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	mode := "live"
	if s.DryRun {
		mode = "dry-run"
	}
	result := "OK"
	if !s.Success {
		result = "FAILED"
	}

	fmt.Fprintf(w, "Run:\t%s (%s)\n", s.RunID, mode)
	fmt.Fprintf(w, "Result:\t%s\n", result)
	fmt.Fprintf(w, "Duration:\t%s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Clients processed:\t%d\n", s.ClientsProcessed)
	fmt.Fprintf(w, "Checks run:\t%d\n", s.ChecksRun)
	fmt.Fprintf(w, "Alerts created:\t%d\n", s.AlertsCreated)
	fmt.Fprintf(w, "Alerts skipped:\t%d\n", s.AlertsSkipped)
	fmt.Fprintf(w, "Errors:\t%d\n", len(s.Errors))
	w.Flush()

	for _, e := range s.Errors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	return b.String()
}
