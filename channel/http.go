package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/docbroker/knowledge"
)

// HTTPConfig configures the REST transport.
type HTTPConfig struct {
	// BaseURL is the upstream root, e.g. "https://docs.example.com/api".
	// Required.
	BaseURL string

	// Name identifies the channel. Default: "http"
	Name string

	// HTTPClient is the client to use for requests.
	// If nil, a default client with a 10s timeout is used.
	HTTPClient *http.Client

	// HealthPath is probed by HealthCheck. Default: "/health"
	HealthPath string
}

// HTTP reaches the upstream through its REST surface.
type HTTP struct {
	config HTTPConfig
}

// NewHTTP creates the REST channel.
func NewHTTP(config HTTPConfig) (*HTTP, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if config.Name == "" {
		config.Name = "http"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.HealthPath == "" {
		config.HealthPath = "/health"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &HTTP{config: config}, nil
}

// Name identifies the channel.
func (c *HTTP) Name() string { return c.config.Name }

// Request performs one GET against the upstream and maps the response into
// typed items.
func (c *HTTP) Request(ctx context.Context, path string, params Params) ([]knowledge.Item, error) {
	u := c.config.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("channel %s: build request: %w", c.config.Name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		// Transport failures and client timeouts are retryable.
		return nil, &TransientError{Channel: c.config.Name, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Channel: c.config.Name, Subject: params["subject"]}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{
			Channel: c.config.Name,
			Err:     fmt.Errorf("upstream status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("channel %s: upstream status %d", c.config.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransientError{Channel: c.config.Name, Err: err}
	}

	var envelope wireResults
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("channel %s: decode response: %w", c.config.Name, err)
	}

	return mapItems(c.config.Name, envelope.Results), nil
}

// HealthCheck probes the upstream's health endpoint.
func (c *HTTP) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u := c.config.BaseURL + c.config.HealthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Ensure HTTP implements Channel
var _ Channel = (*HTTP)(nil)
