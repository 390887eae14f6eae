// Package azdevops is an authenticated HTTPS client for the Azure DevOps
// REST API: branch listing, work-item search, existing-PR lookup, and PR
// creation. Idempotent reads carry bounded retries with exponential backoff;
// the one mutating call (PR creation) is attempted exactly once.
package azdevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/merkle-dx/adopr/internal/logging"
)

// DefaultTimeout is the default HTTP timeout for a single request
const DefaultTimeout = 15 * time.Second

// RetryConfig bounds retries of idempotent read operations
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first
	MaxAttempts int
	// InitialDelay is the backoff before the first retry
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the standard retry policy for reads
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// Delay returns the exponential backoff delay before the given retry
func (rc *RetryConfig) Delay(retry int) time.Duration {
	d := rc.InitialDelay << retry
	if d > rc.MaxDelay {
		return rc.MaxDelay
	}
	return d
}

// Options is the immutable configuration handed to NewClient once at
// process start. Nothing deeper in the pipeline reads ambient state.
type Options struct {
	// OrgURL is the organization base URL
	// (e.g., "https://mpcoderepo.visualstudio.com")
	OrgURL string
	// Project is the team project name
	Project string
	// Repository is the repository name inside the project
	Repository string
	// Token is the personal access token; it is sent, never logged
	Token string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets a custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryConfig configures the read retry behavior
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = config
	}
}

// Client talks to one Azure DevOps project
type Client struct {
	orgURL     string
	project    string
	repository string
	authHeader string
	httpClient *http.Client
	retry      *RetryConfig
}

// NewClient creates a client from explicit options
func NewClient(opts Options, clientOpts ...ClientOption) *Client {
	c := &Client{
		orgURL:     strings.TrimRight(opts.OrgURL, "/"),
		project:    opts.Project,
		repository: opts.Repository,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+opts.Token)),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retry:      DefaultRetryConfig(),
	}
	for _, opt := range clientOpts {
		opt(c)
	}
	return c
}

// Repository returns the configured repository name
func (c *Client) Repository() string {
	return c.repository
}

// apiURL builds a project-scoped API URL with query values
func (c *Client) apiURL(path string, query url.Values) string {
	u := c.orgURL + "/" + url.PathEscape(c.project) + "/_apis" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON performs an idempotent GET with bounded retries
func (c *Client) getJSON(ctx context.Context, url string, result interface{}) error {
	return c.do(ctx, http.MethodGet, url, nil, result, true)
}

// postJSON performs a POST. Retries are only applied when the operation is
// declared idempotent by the caller (e.g., WIQL queries, which only read).
func (c *Client) postJSON(ctx context.Context, url string, payload, result interface{}, idempotent bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, body, result, idempotent)
}

// do sends the request, mapping non-2xx responses onto the error taxonomy.
// Only transient failures (network errors, 429, 5xx) of idempotent calls
// are retried; a non-idempotent call gets exactly one attempt.
func (c *Client) do(ctx context.Context, method, url string, body []byte, result interface{}, idempotent bool) error {
	maxAttempts := 1
	if idempotent && c.retry != nil {
		maxAttempts = c.retry.MaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			logging.Logger.Debug("retrying request", "method", method, "attempt", attempt+1)
			select {
			case <-time.After(c.retry.Delay(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if idempotent && ctx.Err() == nil {
				if attempt < maxAttempts-1 {
					continue
				}
				return &TransientServiceError{Attempts: maxAttempts, Last: err}
			}
			return fmt.Errorf("request failed: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if idempotent {
				if attempt < maxAttempts-1 {
					continue
				}
				return &TransientServiceError{Attempts: maxAttempts, Last: readErr}
			}
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := parseErrorResponse(resp.StatusCode, respBody)
			if idempotent && isTransientStatus(resp.StatusCode) && attempt < maxAttempts-1 {
				lastErr = apiErr
				continue
			}
			if idempotent && isTransientStatus(resp.StatusCode) {
				return &TransientServiceError{Attempts: maxAttempts, Last: apiErr}
			}
			return apiErr
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}

	return lastErr
}
