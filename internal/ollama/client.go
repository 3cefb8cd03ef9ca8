package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ollamaui/pkg/types"
)

// DefaultHost is used when neither configuration nor OLLAMA_HOST name a server.
const DefaultHost = "http://localhost:11434"

// maxErrorBody caps how much of a failed response body is kept for the message.
const maxErrorBody = 4096

// Client talks to an Ollama server over its native HTTP API.
// The host is supplied per call because the panel lets the user edit it.
type Client struct {
	httpClient *http.Client
	reqTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithRequestTimeout bounds each call. Zero leaves calls unbounded.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d < 0 {
			d = 0
		}
		c.reqTimeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a Client with a pooled transport.
func New(opts ...Option) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: deadlines travel on the request context.
	c := &Client{httpClient: &http.Client{Transport: tr, Timeout: 0}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL normalizes a user-supplied host into a URL prefix.
// A bare "host:port" gets an http scheme; trailing slashes are dropped.
func BaseURL(host string) string {
	h := strings.TrimSpace(host)
	if h == "" {
		h = DefaultHost
	}
	if !strings.Contains(h, "://") {
		h = "http://" + h
	}
	return strings.TrimRight(h, "/")
}

// Generate performs one non-streaming completion against host.
// Unreachable hosts yield *ConnectionError; everything else is a wrapped error.
func (c *Client) Generate(ctx context.Context, host string, req types.GenerateRequest) (*types.GenerateResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("ollama client not initialized")
	}
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	req.Stream = false
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, BaseURL(host)+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// A deadline that fires mid-dial is a timeout, not an unreachable host.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generate: %w", ctx.Err())
		}
		if isDialFailure(err) {
			return nil, &ConnectionError{Host: host, Err: err}
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}
	var out types.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	return &out, nil
}

// Ping checks that host answers GET /api/version.
func (c *Client) Ping(ctx context.Context, host string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, BaseURL(host)+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isDialFailure(err) {
			return &ConnectionError{Host: host, Err: err}
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

// statusError prefers the server's {"error": "..."} text over the raw body.
func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = resp.Status
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
