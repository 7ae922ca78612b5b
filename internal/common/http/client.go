// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds staff-backend calls when the caller configures none.
const DefaultTimeout = 10 * time.Second

// Client wraps http.Client for outbound staff-backend requests.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a client with the given request timeout; non-positive
// values fall back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext attaches ctx to the request so callers can cancel an
// in-flight staff-backend call.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
