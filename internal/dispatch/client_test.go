package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/good-yellow-bee/admon/internal/retry"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL: baseURL,
		Token:   "test-token",
		ListID:  "list-1",
		Retry:   retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCreateTask(t *testing.T) {
	var gotTask Task
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/list/list-1/task" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotTask); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TaskRef{ID: "42", URL: "https://tracker.example/42"})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	ref, err := client.CreateTask(context.Background(), Task{
		Name:     "[CRITICAL] Acme — sessions anomaly (2024-06-15)",
		Priority: 1,
		Tags:     []string{"admon"},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if ref.ID != "42" {
		t.Errorf("ref.ID = %q, want 42", ref.ID)
	}
	if gotAuth != "test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotTask.Priority != 1 {
		t.Errorf("task priority = %d, want 1", gotTask.Priority)
	}
}

func TestCreateTaskRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(TaskRef{ID: "7", URL: "https://tracker.example/7"})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	ref, err := client.CreateTask(context.Background(), Task{Name: "t"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if ref.ID != "7" {
		t.Errorf("ref.ID = %q, want 7", ref.ID)
	}
}

func TestCreateTaskFailsFastOnClientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	if _, err := client.CreateTask(context.Background(), Task{Name: "t"}); err == nil {
		t.Fatal("CreateTask = nil, want error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries on 4xx)", attempts)
	}
}

func TestCreateTaskGivesUpAfterBudget(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	if _, err := client.CreateTask(context.Background(), Task{Name: "t"}); err == nil {
		t.Fatal("CreateTask = nil, want error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFindTaskByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got == "" {
			t.Error("missing name query parameter")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tasks": []map[string]string{
				{"id": "1", "name": "Other task", "url": "u1"},
				{"id": "2", "name": "[warning] acme — sessions anomaly (2024-06-15)", "url": "u2"},
			},
		})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)

	// Match is case-insensitive.
	ref, err := client.FindTaskByName(context.Background(), "[WARNING] Acme — sessions anomaly (2024-06-15)")
	if err != nil {
		t.Fatalf("FindTaskByName: %v", err)
	}
	if ref == nil || ref.ID != "2" {
		t.Errorf("ref = %+v, want ID 2", ref)
	}

	ref, err = client.FindTaskByName(context.Background(), "no such task")
	if err != nil {
		t.Fatalf("FindTaskByName: %v", err)
	}
	if ref != nil {
		t.Errorf("ref = %+v, want nil", ref)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"missing base URL", Config{Token: "t", ListID: "l"}},
		{"missing token", Config{BaseURL: "http://x", ListID: "l"}},
		{"missing list ID", Config{BaseURL: "http://x", Token: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.config); err == nil {
				t.Error("NewClient = nil, want error")
			}
		})
	}
}
