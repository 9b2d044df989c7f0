// Package service holds the clients for the upstream APIs behind the
// built-in tools.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the registry to public APIs that require it
// (Nominatim rejects anonymous clients).
const DefaultUserAgent = "aitools/1.0 (+https://ai-tools-registry.vercel.app)"

// ErrNotConfigured is returned by clients whose endpoint or key is unset.
var ErrNotConfigured = errors.New("upstream not configured")

// UpstreamError describes a failed call to an external API.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Service, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Name      string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables throttling
	Burst     int
	UserAgent string
	Transport http.RoundTripper
}

// HTTPClient is the shared transport for upstream clients: timeout,
// throttling, user agent, status checking and JSON decoding.
type HTTPClient struct {
	name      string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPClient builds an HTTPClient from opts.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	c := &HTTPClient{
		name:      opts.Name,
		http:      &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		userAgent: opts.UserAgent,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Name identifies the upstream in errors and logs.
func (c *HTTPClient) Name() string { return c.name }

// Do sends req and returns the response when the status is 2xx. Other
// statuses are returned as *UpstreamError with the body closed.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Service: c.name, Message: "rate limiter", Err: err}
		}
	}
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: c.name, Message: "request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &UpstreamError{Service: c.name, StatusCode: resp.StatusCode, Message: msg}
	}
	return resp, nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *HTTPClient) GetJSON(ctx context.Context, endpoint string, query url.Values, header http.Header, out any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, req, out)
}

// PostJSON sends body as JSON and decodes the JSON response into out.
func (c *HTTPClient) PostJSON(ctx context.Context, endpoint string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, req, out)
}

func (c *HTTPClient) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Service: c.name, Message: "decode response", Err: err}
	}
	return nil
}
