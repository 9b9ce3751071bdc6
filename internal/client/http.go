// Package client talks to a running staffgrid server over its JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gnemet/staffgrid"
)

// ViewPath is the directory endpoint.
const ViewPath = "/api/view"

// EmailHeader carries the caller identity checked by the server allowlist.
const EmailHeader = "X-Forwarded-Email"

// HTTPClient fetches directory pages from a staffgrid server.
type HTTPClient struct {
	baseURL    string
	token      string
	email      string
	httpClient *http.Client
}

// NewHTTPClient targets baseURL (e.g. "http://localhost:8080"). When token is
// non-empty an Authorization header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEmail sets the identity header sent on every request.
func (c *HTTPClient) WithEmail(email string) *HTTPClient {
	c.email = email
	return c
}

// Fetch requests one page. q is sent verbatim, so the server applies its own
// coercion to whatever it contains.
func (c *HTTPClient) Fetch(ctx context.Context, q url.Values) (*staffgrid.Page, error) {
	path := ViewPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var page staffgrid.Page
	if err := c.doJSON(ctx, http.MethodGet, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.email != "" {
		req.Header.Set(EmailHeader, c.email)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
