package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// CaptureResult is the gateway's answer to a capture request, returned
// to the caller as-is.
type CaptureResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Capture settles a previously authorized amount for auth-mode orders.
func (c *Client) Capture(ctx context.Context, paymentUUID string, amount float64) (*CaptureResult, error) {
	if paymentUUID == "" {
		return nil, fmt.Errorf("payment_uuid required")
	}

	form := url.Values{}
	form.Set("payment_uuid", paymentUUID)
	form.Set("transaction_approved_amount", fmt.Sprintf("%.2f", amount))
	form.Set("env", c.env)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/v2/transaction/capture", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-key-id", c.keyID)
	req.Header.Set("x-auth-hash", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway capture request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	result := &CaptureResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("malformed capture response (http %d)", resp.StatusCode)
	}
	return result, nil
}
