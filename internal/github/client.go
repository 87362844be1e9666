// Package github resolves usernames against the GitHub users API and derives
// Co-authored-by trailer lines from the validated profiles.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Resolver looks up one username and returns its validated profile.
// Failures are either *TransportError or *ValidationError; no retries are
// performed, a failed attempt is terminal until re-triggered by the caller.
type Resolver interface {
	Resolve(ctx context.Context, username string) (*Profile, error)
}

// Client resolves profiles via the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// ClientConfig holds GitHub API client settings.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewClient creates a GitHub profile client with an instrumented transport.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Resolve fetches and validates the profile for username.
func (c *Client) Resolve(ctx context.Context, username string) (*Profile, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    truncateBytes(body, 500),
		}
	}

	return ParseProfile(body)
}

var _ Resolver = (*Client)(nil)

func truncateBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
