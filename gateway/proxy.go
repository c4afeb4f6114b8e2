package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Forward relays a raw request to the gateway with server-held
// credentials injected. The response is returned untouched; the caller
// owns closing the body.
func (c *Client) Forward(ctx context.Context, method, path, rawQuery, contentType string, body io.Reader) (*http.Response, error) {
	target := c.endpoint + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-auth-key", c.keyID)
	req.Header.Set("x-auth-hash", c.secret)

	return c.http.Do(req)
}
