// internal/products/client.go
package products

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	httpclient "loandoc-workers/internal/common/http"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

// Client fetches lender products from the staff backend over HTTP. It is
// the fallback source when the local products table is empty or stale.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "products-client"}),
	}
}

type productListResponse struct {
	Products []models.LenderProduct `json:"products"`
}

// FetchProducts retrieves the current lender product catalogue.
func (c *Client) FetchProducts(ctx context.Context) ([]models.LenderProduct, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/lender-products", nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch lender products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("staff backend returned %d: %s", resp.StatusCode, string(body))
	}

	var payload productListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}

	c.logger.Debug("fetched lender products", map[string]interface{}{
		"count":      len(payload.Products),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return payload.Products, nil
}

// ListActive lets the client stand in wherever a ProductSource is expected.
// The staff backend only serves active products.
func (c *Client) ListActive(ctx context.Context) ([]models.LenderProduct, error) {
	return c.FetchProducts(ctx)
}
