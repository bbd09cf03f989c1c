// Package client is the sync gateway: the only component that talks to the
// remote conversation store. It translates store intents into HTTP calls and
// normalizes every outcome, success or failure, into a typed result the
// session store can act on unconditionally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	stdpath "path"
	"time"
)

// Client represents a gateway connected to an InterChat conversation store.
type Client struct {
	h            *http.Client
	base         *url.URL
	token        string
	homeCurrency string
}

// New creates a [Client] for the store at baseURL. homeCurrency is applied to
// transaction items that arrive without a currency of their own.
func New(baseURL, homeCurrency string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing scheme or host", baseURL)
	}
	return &Client{
		h:            &http.Client{Timeout: 30 * time.Second},
		base:         base,
		homeCurrency: homeCurrency,
	}, nil
}

// SetToken sets the bearer credential attached to every call except login.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	return c.sendReq(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body io.Reader) (*http.Response, error) {
	return c.sendReq(ctx, http.MethodPost, path, query, body)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body io.Reader) (*http.Response, error) {
	return c.sendReq(ctx, http.MethodPut, path, query, body)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	return c.sendReq(ctx, http.MethodDelete, path, query, nil)
}

func (c *Client) sendReq(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := *c.base
	u.Path = stdpath.Join(c.base.Path, path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.h.Do(req)
}

func jsonBody(v any) *bytes.Buffer {
	b := new(bytes.Buffer)
	m, _ := json.Marshal(v)
	b.Write(m)
	return b
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}
