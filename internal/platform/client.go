// Package platform provides the ad-platform query client. All checks go
// through Query; the client enforces the configured request rate and
// retries transient failures with exponential backoff.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/admon/internal/metrics"
	"github.com/good-yellow-bee/admon/internal/retry"
)

// Config holds platform client configuration.
type Config struct {
	BaseURL string
	Token   string
	// RequestsPerMinute caps outbound query volume. 0 disables limiting.
	RequestsPerMinute int
	// Retry is the shared resilience policy for transient failures.
	Retry retry.Policy
}

// Validate validates the platform configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("API token is required")
	}
	return nil
}

// Client queries the ad-platform reporting API.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new platform client.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid platform config: %w", err)
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
	}, nil
}

// queryRequest is the reporting API request body.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the reporting API response body.
type queryResponse struct {
	Results []Row `json:"results"`
}

// Query executes a reporting query and returns the result rows.
func (c *Client) Query(ctx context.Context, query string) ([]Row, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	var rows []Row
	err = c.config.Retry.Do(ctx, func(ctx context.Context) error {
		attempted, err := c.doQuery(ctx, body)
		if err != nil {
			metrics.PlatformQueryErrors.Inc()
			return err
		}
		rows = attempted
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("platform query: %w", err)
	}
	return rows, nil
}

func (c *Client) doQuery(ctx context.Context, body []byte) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &retry.StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded.Results, nil
}

// Account holds the account-level status enums used by the billing check.
type Account struct {
	Status        string
	BillingStatus string
}

// AccountSummary fetches account and billing status.
func (c *Client) AccountSummary(ctx context.Context) (Account, error) {
	rows, err := c.Query(ctx, "SELECT account.status, billing_setup.status FROM account")
	if err != nil {
		return Account{}, err
	}
	if len(rows) == 0 {
		return Account{}, fmt.Errorf("account summary: no rows returned")
	}
	return Account{
		Status:        rows[0].Str("account.status"),
		BillingStatus: rows[0].Str("billing_setup.status"),
	}, nil
}
