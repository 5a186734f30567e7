package port

import (
	"context"
	"fmt"
	"net/http"
)

// Request is an outbound HTTP request.
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
}

// Response is what came back. Non-2xx statuses are responses, not errors.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Transport performs outbound requests. An error means the request did not
// complete: the caller treats it as retryable.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Post sends body as JSON to url.
func Post(ctx context.Context, t Transport, url string, body []byte) (*Response, error) {
	return t.Do(ctx, Request{
		Method:  http.MethodPost,
		URL:     url,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// RequestError is an ad server call that failed. StatusCode is zero when no
// response was received.
type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
