// internal/common/http/client_test.go
package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(0)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient(2 * time.Second)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}

func TestDoWithContext_Cancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = NewClient(time.Second).DoWithContext(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}
