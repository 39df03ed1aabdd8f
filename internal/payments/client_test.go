// internal/payments/client_test.go
package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"repobounty/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	return NewClient(&Config{
		BaseURL:    serverURL,
		Token:      "USDC",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))
}

func TestTransfer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/transfer", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "USDC", req["token"])
		assert.Equal(t, 14.5, req["amount"])

		json.NewEncoder(w).Encode(map[string]string{"txHash": "0xabc123"})
	}))
	defer server.Close()

	tx, err := newTestClient(t, server.URL).Transfer(context.Background(),
		"0x1111111111111111111111111111111111111111", 14.5, "bounty pr-101")

	require.NoError(t, err)
	assert.Equal(t, "0xabc123", tx)
}

func TestTransfer_RetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"txHash": "0xdef"})
	}))
	defer server.Close()

	tx, err := newTestClient(t, server.URL).Transfer(context.Background(), "0xdead", 5, "")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "0xdef", tx)
}

func TestTransfer_FailureAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transfer(context.Background(), "0xdead", 5, "")
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestTransfer_EmptyHashIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transfer(context.Background(), "0xdead", 5, "")
	assert.ErrorIs(t, err, ErrTransferFailed)
}
