package terminology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/igpublisher/service"
)

const (
	// DefaultTimeout for terminology server requests.
	DefaultTimeout = 30 * time.Second
)

// Client expands value sets against an external terminology server by
// POSTing the value set to the server's $expand operation.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ service.Expander = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a terminology server client. baseURL is the server
// root, e.g. "http://tx.fhir.org/r4".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Expand implements service.Expander against the server's
// ValueSet/$expand endpoint.
func (c *Client) Expand(ctx context.Context, vs *r4.ValueSet) (*r4.ValueSet, error) {
	if vs == nil {
		return nil, fmt.Errorf("no valueset to expand")
	}

	body, err := json.Marshal(vs)
	if err != nil {
		return nil, fmt.Errorf("encoding valueset: %w", err)
	}

	url := c.baseURL + "/ValueSet/$expand"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/fhir+json")
	req.Header.Set("Accept", "application/fhir+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expansion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("terminology server returned status %d: %s", resp.StatusCode, detail)
	}

	var expanded r4.ValueSet
	if err := json.NewDecoder(resp.Body).Decode(&expanded); err != nil {
		return nil, fmt.Errorf("decoding expansion response: %w", err)
	}
	if expanded.Expansion == nil {
		return nil, fmt.Errorf("terminology server returned no expansion")
	}
	return &expanded, nil
}
