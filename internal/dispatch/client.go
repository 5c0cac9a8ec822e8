// Package dispatch builds alert payloads and delivers them to the
// external task tracker through a retrying HTTP client.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/good-yellow-bee/admon/internal/metrics"
	"github.com/good-yellow-bee/admon/internal/retry"
)

// Config holds task tracker client configuration.
type Config struct {
	BaseURL string
	Token   string
	// ListID is the tracker list tasks are created in.
	ListID string
	// Retry is the shared resilience policy for transient failures.
	Retry retry.Policy
}

// Validate validates the tracker configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("API token is required")
	}
	if c.ListID == "" {
		return fmt.Errorf("list ID is required")
	}
	return nil
}

// Task is the payload submitted to the tracker.
type Task struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

// TaskRef identifies a created task.
type TaskRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client submits tasks to the external tracker.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new tracker client.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateTask submits a task, retrying transient failures. 4xx responses
// fail immediately: they indicate a non-transient request problem.
func (c *Client) CreateTask(ctx context.Context, task Task) (TaskRef, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return TaskRef{}, fmt.Errorf("marshal task: %w", err)
	}

	endpoint := fmt.Sprintf("%s/list/%s/task", c.config.BaseURL, url.PathEscape(c.config.ListID))

	var ref TaskRef
	err = c.config.Retry.Do(ctx, func(ctx context.Context) error {
		created, err := c.doCreate(ctx, endpoint, body)
		if err != nil {
			metrics.TrackerRequestErrors.Inc()
			return err
		}
		ref = created
		return nil
	})
	if err != nil {
		return TaskRef{}, fmt.Errorf("create task: %w", err)
	}
	return ref, nil
}

func (c *Client) doCreate(ctx context.Context, endpoint string, body []byte) (TaskRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return TaskRef{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskRef{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return TaskRef{}, &retry.StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	var ref TaskRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return TaskRef{}, fmt.Errorf("decode response: %w", err)
	}
	return ref, nil
}

// taskListResponse is the tracker's task search response.
type taskListResponse struct {
	Tasks []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"tasks"`
}

// FindTaskByName searches the list for a task with an identical name.
// A belt-and-suspenders dedup check alongside the fingerprint ledger.
func (c *Client) FindTaskByName(ctx context.Context, name string) (*TaskRef, error) {
	endpoint := fmt.Sprintf("%s/list/%s/task?name=%s",
		c.config.BaseURL, url.PathEscape(c.config.ListID), url.QueryEscape(name))

	var found *TaskRef
	err := c.config.Retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", c.config.Token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.TrackerRequestErrors.Inc()
			return fmt.Errorf("send request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			metrics.TrackerRequestErrors.Inc()
			return &retry.StatusError{Code: resp.StatusCode, Body: string(b)}
		}

		var decoded taskListResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		for _, t := range decoded.Tasks {
			if strings.EqualFold(t.Name, name) {
				found = &TaskRef{ID: t.ID, URL: t.URL}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find task by name: %w", err)
	}
	return found, nil
}
