// internal/payments/client.go
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"repobounty/internal/common/logger"
)

var ErrTransferFailed = errors.New("PAYMENT_FAILED")

// Sender initiates stablecoin transfers. The settlement orchestrator treats
// transfers as fire-and-forget: authorization happens on the ledger, the
// transfer itself is best-effort.
type Sender interface {
	Transfer(ctx context.Context, to string, amount float64, memo string) (txHash string, err error)
}

// Config drives the payment gateway client.
type Config struct {
	BaseURL    string
	APIKey     string
	Token      string // stablecoin symbol, e.g. USDC
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the custodial payment gateway over HTTP.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "payments"}),
	}
}

// Transfer submits a transfer and returns the gateway's transaction hash.
func (c *Client) Transfer(ctx context.Context, to string, amount float64, memo string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, _ := json.Marshal(map[string]interface{}{
		"to":     to,
		"amount": amount,
		"token":  c.config.Token,
		"memo":   memo,
	})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTransferFailed, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/payments/transfer", bytes.NewBuffer(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrTransferFailed)
	}
	defer resp.Body.Close()

	var result struct {
		TxHash string `json:"txHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrTransferFailed, err)
	}
	if result.TxHash == "" {
		return "", fmt.Errorf("%w: gateway returned no transaction hash", ErrTransferFailed)
	}

	c.logger.Info("transfer submitted", map[string]interface{}{
		"to":     to,
		"amount": amount,
		"txHash": result.TxHash,
	})
	return result.TxHash, nil
}
