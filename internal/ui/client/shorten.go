package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ShortenRequest is the body sent to create or update a short url
type ShortenRequest struct {
	URL string `json:"url"`
}

// ShortenRecord is a url registered with the backend.
// Only URL and ShortCode are guaranteed, the other fields are set by stats requests.
type ShortenRecord struct {
	ID          string `json:"_id,omitempty"`
	URL         string `json:"url"`
	ShortCode   string `json:"shortCode"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	AccessCount *int   `json:"accessCount,omitempty"`
}

// Shorten registers rawURL with the backend and returns the record with its short code
func (c *Client) Shorten(ctx context.Context, rawURL string) (*ShortenRecord, error) {
	payload, err := json.Marshal(ShortenRequest{URL: rawURL})
	if err != nil {
		return nil, NewClientInternalError(err, "marshaling shorten request")
	}

	data, err := c.Dispatch(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return nil, err
	}

	var record ShortenRecord
	if err := decodeResponse(data, recordSchema, &record, "decoding shorten response"); err != nil {
		return nil, err
	}
	return &record, nil
}

// Lookup returns the record for key. The backend signals an unknown key either with an error status or with an object that has no url,
// so callers must check ShortenRecord.URL.
func (c *Client) Lookup(ctx context.Context, key string) (*ShortenRecord, error) {
	data, err := c.Dispatch(ctx, http.MethodGet, c.keyPath(key), nil)
	if err != nil {
		return nil, err
	}

	var record ShortenRecord
	if err := decodeResponse(data, lookupSchema, &record, "decoding lookup response"); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns the records known to the backend in the order the backend sent them
func (c *Client) List(ctx context.Context) ([]ShortenRecord, error) {
	data, err := c.Dispatch(ctx, http.MethodGet, c.endpoint+"/list", nil)
	if err != nil {
		return nil, err
	}

	var records []ShortenRecord
	if err := decodeResponse(data, listSchema, &records, "decoding list response"); err != nil {
		return nil, err
	}
	return records, nil
}

// Stats returns the record for key including its access count. Unlike Lookup this does not count as an access.
func (c *Client) Stats(ctx context.Context, key string) (*ShortenRecord, error) {
	data, err := c.Dispatch(ctx, http.MethodGet, c.keyPath(key)+"/stats", nil)
	if err != nil {
		return nil, err
	}

	var record ShortenRecord
	if err := decodeResponse(data, statsSchema, &record, "decoding stats response"); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update points key at rawURL
func (c *Client) Update(ctx context.Context, key, rawURL string) (*ShortenRecord, error) {
	payload, err := json.Marshal(ShortenRequest{URL: rawURL})
	if err != nil {
		return nil, NewClientInternalError(err, "marshaling update request")
	}

	data, err := c.Dispatch(ctx, http.MethodPut, c.keyPath(key), payload)
	if err != nil {
		return nil, err
	}

	var record ShortenRecord
	if err := decodeResponse(data, updateSchema, &record, "decoding update response"); err != nil {
		return nil, err
	}
	if record.ShortCode == "" {
		record.ShortCode = key
	}
	return &record, nil
}

// Delete removes key. Only the status matters: any 2xx is success, whatever the body (the backend normally answers 204).
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.dispatch(ctx, http.MethodDelete, c.keyPath(key), nil, false)
	return err
}

// keyPath returns the path of a short code, escaped exactly as typed
func (c *Client) keyPath(key string) string {
	return c.endpoint + "/" + url.PathEscape(key)
}
