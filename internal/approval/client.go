// Package approval implements the client side of the order-approval
// workflow: a REST client for the order-approval endpoints, a fixed-interval
// status poller, and the waiting session that turns poll results into
// terminal accept/deny/cancel outcomes.
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StatusResult is one successfully fetched status payload
type StatusResult struct {
	Status       string
	DenialReason string
}

// StatusFetcher reads the current status of an order. Must be safe to call
// repeatedly; every call is an idempotent read.
type StatusFetcher interface {
	OrderStatus(ctx context.Context, orderID string) (*StatusResult, error)
}

// StatusProvider is the full backend surface a waiting session needs
type StatusProvider interface {
	StatusFetcher
	CancelOrder(ctx context.Context, orderID, userID string) error
}

// ClientConfig holds REST client configuration
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the REST client for the order-approval endpoints
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new order-approval client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// envelope is the success flag every response payload carries
type envelope interface {
	successful() bool
}

type statusResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	DenialReason string `json:"denialReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (r statusResponse) successful() bool { return r.Success }

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (r cancelResponse) successful() bool { return r.Success }

type submitResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Error   string `json:"error,omitempty"`
}

func (r submitResponse) successful() bool { return r.Success }

// OrderStatus fetches the current status of an order
func (c *Client) OrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	url := fmt.Sprintf("%s/order-approval/status/%s", c.baseURL, orderID)

	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("status request rejected: %s", resp.Error)
	}

	return &StatusResult{
		Status:       resp.Status,
		DenialReason: resp.DenialReason,
	}, nil
}

// CancelOrder cancels a pending order on behalf of the user
func (c *Client) CancelOrder(ctx context.Context, orderID, userID string) error {
	url := fmt.Sprintf("%s/order-approval/%s/cancel", c.baseURL, orderID)
	body := map[string]string{"userId": userID}

	var resp cancelResponse
	if err := c.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("cancel rejected: %s", resp.Message)
	}
	return nil
}

// SubmitOrder submits an order for vendor approval and returns the order id
func (c *Client) SubmitOrder(ctx context.Context, userID string, payload interface{}) (string, error) {
	url := fmt.Sprintf("%s/order-approval/submit/%s", c.baseURL, userID)

	var resp submitResponse
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("submit rejected: %s", resp.Error)
	}
	return resp.OrderID, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Error payloads share the success envelope, so decode before checking
	// the HTTP code and prefer the decoded message when present. A non-2xx
	// body that decodes but still claims success is malformed and rejected.
	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil {
			if env, ok := out.(envelope); ok && !env.successful() {
				return nil
			}
		}
		return fmt.Errorf("unexpected response status %d from %s", resp.StatusCode, url)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return nil
}
