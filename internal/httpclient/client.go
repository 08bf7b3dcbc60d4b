package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	ierr "github.com/printprice/printprice/internal/errors"
)

const defaultTimeout = 30 * time.Second

// Request is an outbound HTTP request. A non-nil Body is sent as JSON
// unless the headers say otherwise.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the received status and body.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client sends outbound HTTP requests. Webhook delivery is the main
// consumer; tests swap in a recording implementation.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type defaultClient struct {
	http *http.Client
}

// NewDefaultClient returns a Client backed by net/http with a sane timeout.
func NewDefaultClient() Client {
	return &defaultClient{
		http: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *defaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := build(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Request failed").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed reading response").
			Mark(ierr.ErrHTTPClient)
	}

	// A non-2xx becomes an error carrying the status so the retry policy
	// can decide whether another attempt is worth it.
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// build converts a Request into net/http form. A non-nil body defaults the
// content type to JSON; explicit headers override it.
func build(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid outbound request").
			Mark(ierr.ErrHTTPClient)
	}

	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}
