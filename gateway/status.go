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

// Status is the canonical normalization of the gateway's status
// vocabulary. Unknown means "no new evidence", never "declined".
type Status string

const (
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusPending  Status = "pending"
	StatusUnknown  Status = "unknown"
)

// StatusResult is one remote status observation.
type StatusResult struct {
	Status       Status
	HTTPCode     int
	Message      string
	ResponseCode string
	Raw          map[string]interface{}
}

// AuthRejected reports whether the gateway refused our credentials.
func (r *StatusResult) AuthRejected() bool {
	return r.HTTPCode == http.StatusUnauthorized || r.HTTPCode == http.StatusForbidden
}

// FetchStatus queries the gateway for the live status of a payment
// uuid. A network-level failure returns an error; any HTTP response,
// success or not, returns a StatusResult. Non-2xx and malformed bodies
// normalize to StatusUnknown. No internal retries, no memory between
// calls.
func (c *Client) FetchStatus(ctx context.Context, paymentUUID string) (*StatusResult, error) {
	if paymentUUID == "" {
		return nil, fmt.Errorf("payment_uuid required")
	}

	form := url.Values{}
	form.Set("payment_uuid", paymentUUID)
	form.Set("env", c.env)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/v2/transaction/status", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-key-id", c.keyID)
	req.Header.Set("x-auth-hash", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway status request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	result := &StatusResult{
		Status:   StatusUnknown,
		HTTPCode: resp.StatusCode,
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return result, nil
	}
	result.Raw = parsed
	result.Message = stringField(parsed, "message")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The gateway signals a decline or a still-processing
		// transaction through these codes even without a usable body.
		switch resp.StatusCode {
		case http.StatusPaymentRequired:
			result.Status = StatusDeclined
		case http.StatusRequestTimeout:
			result.Status = StatusPending
		}
		return result, nil
	}

	result.Status = normalizeBody(parsed)
	if data := dataSection(parsed); data != nil {
		result.ResponseCode = stringField(data, "response_code")
	}
	return result, nil
}

// normalizeBody maps the gateway's loosely-typed response vocabulary
// onto the canonical status set. All field-name variance lives here.
func normalizeBody(obj map[string]interface{}) Status {
	d := dataSection(obj)
	if d == nil {
		d = obj
	}

	code := strings.TrimSpace(stringField(d, "response_code"))
	state := strings.ToLower(firstString(d,
		"transaction_state", "transaction_status", "state", "status"))
	hasID := stringField(d, "payment_uuid") != "" || stringField(d, "transaction_id") != ""

	if boolField(d, "response_approved") || code == "00" {
		return StatusApproved
	}
	switch state {
	case "approved", "paid", "success", "completed":
		if hasID {
			return StatusApproved
		}
	case "declined", "void", "voided", "rejected", "failed", "canceled", "cancelled", "expired":
		return StatusDeclined
	case "pending", "processing", "incomplete", "in_process":
		return StatusPending
	}
	if boolField(d, "response_incomplete") {
		return StatusPending
	}
	return StatusUnknown
}

func dataSection(obj map[string]interface{}) map[string]interface{} {
	if d, ok := obj["data"].(map[string]interface{}); ok {
		return d
	}
	return nil
}

func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	}
	return ""
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := stringField(obj, key); s != "" {
			return s
		}
	}
	return ""
}

func boolField(obj map[string]interface{}, key string) bool {
	b, _ := obj[key].(bool)
	return b
}
