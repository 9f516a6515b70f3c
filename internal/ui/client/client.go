// Package client is used by the ui actions to call the shortener backend API.
// Every call goes through Dispatch, which sends one request and either returns the JSON body or a ClientError.
// ClientError separates the message shown in the status display from the technical detail used for logging (see client/errors.go)
package client

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ResponseFunc is called with every response body received from the backend (used for diagnostics)
type ResponseFunc func(ctx context.Context, method, url string, status int, body []byte)

// Client handles communication with the shortener API
type Client struct {
	baseURL    string
	endpoint   string
	httpClient *http.Client
	onResponse ResponseFunc
}

// NewClient creates a client for the API at baseURL. endpoint is the path of the shorten resource (normally /shorten).
// A zero timeout means requests are only bounded by the caller's context.
func NewClient(baseURL, endpoint string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		endpoint: "/" + strings.Trim(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// OnResponse registers fn to receive each response body. Not safe to call while requests are in flight.
func (c *Client) OnResponse(fn ResponseFunc) {
	c.onResponse = fn
}

func (c *Client) Endpoint() string {
	return c.endpoint
}
