package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"loandoc-workers/internal/common/logger"
)

// ==========================
// Staff Backend Client Tests
// ==========================

func TestClient_FetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lender-products", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [
				{
					"id": "prod-1",
					"lenderId": "l1",
					"lenderName": "First Capital",
					"productName": "Working Capital Loan",
					"category": "working_capital",
					"country": "US",
					"amountMin": 10000,
					"amountMax": 500000,
					"requiredDocuments": {"required": ["bank_statements"]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 5*time.Second, logger.NewZapAdapter(zaptest.NewLogger(t)))

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "First Capital", products[0].LenderName)
	assert.Equal(t, 500000.0, products[0].AmountMax)
	assert.NotNil(t, products[0].RequiredDocs)
}

func TestClient_FetchProducts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, logger.NewZapAdapter(zaptest.NewLogger(t)))

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_FetchProducts_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, logger.NewZapAdapter(zaptest.NewLogger(t)))

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
}

func TestClient_ListActive_DelegatesToFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, logger.NewZapAdapter(zaptest.NewLogger(t)))

	products, err := client.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
