package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestOptions holds the settings for a single request.
type RequestOptions struct {
	Timeout   time.Duration
	Body      []byte
	Headers   []Header
	Username  string
	Password  string
	BasicAuth bool
	Client    *http.Client
}

// Header is one request header. Headers are applied in order, so a later
// entry overrides an earlier one with the same key.
type Header struct {
	Key   string
	Value string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestOption mutates RequestOptions.
type RequestOption func(*RequestOptions)

// WithTimeout bounds the whole request, including reading the body.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// WithBody sets the request body.
func WithBody(body []byte) RequestOption {
	return func(o *RequestOptions) {
		o.Body = body
	}
}

// WithHeader appends a header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		o.Headers = append(o.Headers, Header{Key: key, Value: value})
	}
}

// WithHeaders appends several headers, keeping their order.
func WithHeaders(headers ...Header) RequestOption {
	return func(o *RequestOptions) {
		o.Headers = append(o.Headers, headers...)
	}
}

// WithBasicAuth sets HTTP basic credentials.
func WithBasicAuth(username, password string) RequestOption {
	return func(o *RequestOptions) {
		o.Username = username
		o.Password = password
		o.BasicAuth = true
	}
}

// WithClient uses the given client instead of a fresh one.
func WithClient(client *http.Client) RequestOption {
	return func(o *RequestOptions) {
		o.Client = client
	}
}

// Do performs an HTTP request and reads the whole response body.
// Non-2xx statuses are not errors; only transport failures are.
func Do(ctx context.Context, method, url string, opts ...RequestOption) (*Response, error) {
	options := &RequestOptions{
		Timeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	client := options.Client
	if client == nil {
		client = &http.Client{}
	}

	var body io.Reader
	if options.Body != nil {
		body = bytes.NewReader(options.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if options.BasicAuth {
		req.SetBasicAuth(options.Username, options.Password)
	}
	for _, h := range options.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (status: %d): %w", resp.StatusCode, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
