package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"bat-ads/internal/core/port"
)

const tracerName = "bat-ads/transport"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// Options tunes the underlying retrying client.
type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// DefaultOptions keeps in-request retries short; the confirmation queue
// owns long backoff.
func DefaultOptions() Options {
	return Options{
		Timeout:      30 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		UserAgent:    "bat-ads",
	}
}

// HTTP implements port.Transport over go-retryablehttp. Every request gets a
// client span and trace propagation headers.
type HTTP struct {
	client    *retryablehttp.Client
	tracer    trace.Tracer
	userAgent string
}

var _ port.Transport = (*HTTP)(nil)

// New builds an HTTP transport. A nil logger silences retry logs.
func New(opts Options, log *slog.Logger) *HTTP {
	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	c.RetryWaitMin = opts.RetryWaitMin
	c.RetryWaitMax = opts.RetryWaitMax
	c.HTTPClient.Timeout = opts.Timeout
	// Exhausted retries hand back the last response instead of an error so
	// the caller can classify the status.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if log != nil {
		c.Logger = retryablehttp.LeveledLogger(log)
	} else {
		c.Logger = nil
	}
	return &HTTP{
		client:    c,
		tracer:    otel.Tracer(tracerName),
		userAgent: opts.UserAgent,
	}
}

// Do sends req and reads the whole response. Non-2xx statuses are returned
// as responses.
func (t *HTTP) Do(ctx context.Context, req port.Request) (*port.Response, error) {
	ctx, span := t.tracer.Start(ctx, "HTTP "+req.Method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("server.address", hostOf(req.URL)),
	)

	var body any
	if req.Body != nil {
		body = req.Body
	}
	r, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build request: %w", err)
	}
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	resp, err := t.client.Do(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}
	return &port.Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Headers:    resp.Header,
	}, nil
}

// hostOf keeps credentials carried in paths out of span attributes.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
