// Package gateway is the JSON-over-HTTP client the engines talk to the
// platform API through. It owns request encoding, credential attachment, and
// error normalization so callers only ever see Go errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

// Error is a normalized API failure. When the server body carried an
// { "error": "..." } payload, Message holds that string verbatim.
type Error struct {
	StatusCode    int
	Message       string
	ServerMessage bool
}

func (e *Error) Error() string {
	return e.Message
}

// ServerMessage extracts the verbatim server-supplied failure message from
// err, if one was present. UI surfaces show it unchanged.
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.ServerMessage {
		return apiErr.Message, true
	}

	return "", false
}

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// New builds a client for the API at baseURL. token supplies the current
// bearer token per request (empty means unauthenticated); requests carry a
// cookie jar and traced transport.
func New(baseURL string, token func() string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   defaultTimeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token: token,
	}, nil
}

// Get issues a GET and decodes a 2xx JSON body into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req, dest)
}

// Send issues a JSON-bodied request (POST/PUT/PATCH/DELETE) and decodes a 2xx
// response into dest when dest is non-nil.
func (c *Client) Send(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeFailure(resp.StatusCode, data)
	}

	if dest == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	return nil
}

// normalizeFailure turns a non-2xx response into an *Error. A parseable
// { "error": string } body keeps the server's message verbatim; anything else
// gets a generic status-derived message.
func normalizeFailure(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &Error{StatusCode: status, Message: payload.Error, ServerMessage: true}
	}

	return &Error{
		StatusCode: status,
		Message:    fmt.Sprintf("request failed with status %d", status),
	}
}
