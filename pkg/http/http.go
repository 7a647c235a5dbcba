// Package http is a small fluent JSON client with retries, used for calls
// to the storefront API from Go (the cart sync remote, smoke tests).
//
//	c := http.NewClient("https://shop.example.com", http.WithBearer(token))
//
//	var cart models.Cart
//	err := c.Get("/api/cart").Retry(3, 200*time.Millisecond).Send(ctx).Decode(&cart)
//
//	err = c.Post("/api/cart").Body(payload).Send(ctx).Err()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: %s %s returned %d: %s", e.Method, e.URL, e.Code, truncate(e.Body, 200))
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBearer sends Authorization: Bearer <token> on every request.
func WithBearer(token string) ClientOption {
	return func(c *Client) { c.headers["Authorization"] = "Bearer " + token }
}

// WithHTTPClient replaces the underlying client, e.g. an httptest server's.
func WithHTTPClient(hc *gohttp.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// Client sends requests relative to a base URL.
type Client struct {
	baseURL string
	hc      *gohttp.Client
	headers map[string]string
	timeout time.Duration
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &gohttp.Client{Transport: defaultTransport},
		headers: map[string]string{"Accept": "application/json"},
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(path string) *Request    { return c.newRequest(gohttp.MethodGet, path) }
func (c *Client) Post(path string) *Request   { return c.newRequest(gohttp.MethodPost, path) }
func (c *Client) Put(path string) *Request    { return c.newRequest(gohttp.MethodPut, path) }
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return &Request{
		client:    c,
		method:    method,
		url:       c.baseURL + "/" + strings.TrimLeft(path, "/"),
		headers:   headers,
		attempts:  1,
		retryWait: 200 * time.Millisecond,
	}
}

// ------------------- Request -------------------

// Request is a fluent request builder.
type Request struct {
	client    *Client
	method    string
	url       string
	headers   map[string]string
	body      any
	attempts  int
	retryWait time.Duration
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets a JSON body. []byte is sent raw.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Retry makes up to n attempts, doubling wait after each failure. Only
// transport errors and 5xx responses are retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n > 0 {
		r.attempts = n
	}
	r.retryWait = wait
	return r
}

// Send executes the request.
func (r *Request) Send(ctx context.Context) *Response {
	body, err := r.encode()
	if err != nil {
		return &Response{err: err}
	}

	wait := r.retryWait
	var resp *Response
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp = r.do(ctx, body)
		if !retryable(resp) || attempt == r.attempts {
			break
		}
		logger.WithCtx(ctx).Warn("http: request failed, retrying",
			"method", r.method, "url", r.url, "attempt", attempt, "backoff", wait, "error", resp.Err())

		select {
		case <-ctx.Done():
			return &Response{err: ctx.Err()}
		case <-time.After(wait):
		}
		wait *= 2
	}
	return resp
}

func (r *Request) encode() ([]byte, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("http: marshal body: %w", err)
		}
		return b, nil
	}
}

func (r *Request) do(ctx context.Context, body []byte) *Response {
	ctx, cancel := context.WithTimeout(ctx, r.client.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, rd)
	if err != nil {
		return &Response{err: fmt.Errorf("http: build request: %w", err)}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.hc.Do(req)
	if err != nil {
		return &Response{err: fmt.Errorf("http: %s %s: %w", r.method, r.url, err)}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &Response{StatusCode: res.StatusCode, err: fmt.Errorf("http: read body: %w", err)}
	}

	out := &Response{StatusCode: res.StatusCode, Headers: res.Header, Raw: raw}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		out.err = &StatusError{Method: r.method, URL: r.url, Code: res.StatusCode, Body: raw}
	}
	return out
}

func retryable(resp *Response) bool {
	if resp.err == nil {
		return false
	}
	var se *StatusError
	if errors.As(resp.err, &se) {
		return se.Code >= 500
	}
	return !errors.Is(resp.err, context.Canceled)
}

// ------------------- Response -------------------

// Response carries the outcome of Send. A failed request still yields a
// Response whose Err is set.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
	err        error
}

// Err is the transport or status error, if any.
func (r *Response) Err() error { return r.err }

// Decode unmarshals a successful body into dest.
func (r *Response) Decode(dest any) error {
	if r.err != nil {
		return r.err
	}
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// DecodeData unmarshals the "data" field of the API envelope into dest.
func (r *Response) DecodeData(dest any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := r.Decode(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("http: decode data: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
