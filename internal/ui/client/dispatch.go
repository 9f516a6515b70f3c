package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// responses larger than this are rejected
const maxResponseSize = 10 * 1024 * 1024

// Dispatch sends a single request to the backend and returns the parsed JSON body.
//
// endpoint is a path relative to the API base url. When payload is not empty it is sent as the request body with Content-Type: application/json.
// A 2xx response with an empty body returns nil, nil.
// There are no retries: the request is attempted once and bounded only by ctx and the client timeout.
func (c *Client) Dispatch(ctx context.Context, method, endpoint string, payload []byte) (json.RawMessage, error) {
	return c.dispatch(ctx, method, endpoint, payload, true)
}

// dispatch sends the request. When wantJSON is false a 2xx body is not parsed and nil is returned, for calls whose result is only the status.
func (c *Client) dispatch(ctx context.Context, method, endpoint string, payload []byte, wantJSON bool) (json.RawMessage, error) {
	url := c.baseURL + endpoint

	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("creating %s %s request", method, endpoint))
	}

	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewClientConnectionError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := NewClientApiError(res)
		c.notify(ctx, method, url, res.StatusCode, []byte(apiErr.UserMessage))
		return nil, apiErr
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize+1))
	if err != nil {
		return nil, NewClientConnectionError(err)
	}
	if len(data) > maxResponseSize {
		return nil, NewClientInvalidResponseError(res.StatusCode, errors.New("response body too large"), fmt.Sprintf("reading %s %s response", method, endpoint))
	}

	c.notify(ctx, method, url, res.StatusCode, data)

	data = bytes.TrimSpace(data)
	if len(data) == 0 || !wantJSON {
		return nil, nil
	}

	if !json.Valid(data) {
		return nil, NewClientInvalidResponseError(res.StatusCode, errors.New("body is not valid JSON"), fmt.Sprintf("reading %s %s response", method, endpoint))
	}

	return json.RawMessage(data), nil
}

func (c *Client) notify(ctx context.Context, method, url string, status int, body []byte) {
	if c.onResponse != nil {
		c.onResponse(ctx, method, url, status, body)
	}
}

// requestID reuses the id of the incoming ui request so the backend logs can be correlated with the ui logs
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
