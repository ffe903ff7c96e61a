// Package http is a small fluent client for outbound calls (Overpass,
// Slack webhooks) with retry and JSON helpers.
//
//	var out overpassResponse
//	err := http.Post(endpoint).
//	    Form(url.Values{"data": {query}}).
//	    Timeout(90 * time.Second).
//	    Retry(3, 2*time.Second).
//	    WithContext(ctx).
//	    DecodeJSON(&out)
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outbound request. Tests may swap its
// Transport and call ResetTransport afterwards.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() { DefaultClient.Transport = defaultTransport }

// maxResponseBytes bounds what a single response may load into memory.
const maxResponseBytes = 64 << 20

type Request struct {
	method    string
	url       string
	headers   gohttp.Header
	body      []byte
	bodyErr   error
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	ctx       context.Context
}

func Get(u string) *Request  { return newRequest(gohttp.MethodGet, u) }
func Post(u string) *Request { return newRequest(gohttp.MethodPost, u) }

func newRequest(method, u string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "uniformhub/1.0")
	return &Request{
		method:    method,
		url:       u,
		headers:   h,
		timeout:   30 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// JSON marshals v as the body.
func (r *Request) JSON(v any) *Request {
	r.body, r.bodyErr = json.Marshal(v)
	r.headers.Set("Content-Type", "application/json")
	return r
}

// Form encodes values as an application/x-www-form-urlencoded body.
func (r *Request) Form(values url.Values) *Request {
	r.body = []byte(values.Encode())
	r.headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the initial backoff, which
// doubles after each failure. Network errors, 429 and 5xx are retried.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("http: status %d: %s", e.StatusCode, body)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == gohttp.StatusTooManyRequests || se.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// Send performs the request and returns the body of a 2xx response.
func (r *Request) Send() ([]byte, error) {
	if r.bodyErr != nil {
		return nil, fmt.Errorf("http: marshal body: %w", r.bodyErr)
	}

	wait := r.retryWait
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		body, err := r.do()
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt == r.attempts || !retryable(err) {
			break
		}

		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait.String(), "error", err)
		select {
		case <-time.After(wait):
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		}
		wait *= 2
	}
	return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, lastErr)
}

// DecodeJSON sends the request and decodes a 2xx body into dest.
func (r *Request) DecodeJSON(dest any) error {
	body, err := r.Send()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Request) do() ([]byte, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header = r.headers.Clone()

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}
