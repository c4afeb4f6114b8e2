// Package gateway is the PixelPay client: hash-proof verification,
// remote transaction status, and capture. Credentials are server-held
// and injected at construction; handlers never touch them directly.
package gateway

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to one PixelPay environment. All outbound calls share a
// bounded-timeout HTTP client; nothing here retries.
type Client struct {
	endpoint string
	keyID    string
	secret   string
	env      string // live or sandbox
	http     *http.Client
}

// Options configures a Client.
type Options struct {
	Endpoint string
	KeyID    string
	Secret   string
	Env      string
	Timeout  time.Duration
	// Transport overrides the HTTP client, used by tests.
	Transport *http.Client
}

// NewClient constructs a gateway client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := opts.Transport
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	env := opts.Env
	if env != "sandbox" {
		env = "live"
	}
	return &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		keyID:    opts.KeyID,
		secret:   opts.Secret,
		env:      env,
		http:     httpClient,
	}
}

// Endpoint returns the normalized gateway base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// AuthHeaders returns the credential headers the gateway expects.
func (c *Client) AuthHeaders() map[string]string {
	return map[string]string{
		"x-key-id":    c.keyID,
		"x-auth-key":  c.keyID,
		"x-auth-hash": c.secret,
	}
}
