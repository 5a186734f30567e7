package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/port"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.RetryMax = 2
	opts.RetryWaitMin = time.Millisecond
	opts.RetryWaitMax = 5 * time.Millisecond
	return opts
}

func TestDoPostsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/thing", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "bat-ads", r.Header.Get("User-Agent"))
		assert.JSONEq(t, `{"a":1}`, string(body))
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := port.Post(context.Background(), New(testOptions(), nil), srv.URL+"/v3/thing", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "yes", resp.Headers.Get("X-Test"))
}

func TestDoReturnsClientErrorsAsResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := New(testOptions(), nil).Do(context.Background(), port.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	resp, err := New(testOptions(), nil).Do(context.Background(), port.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "done", string(resp.Body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestDoPassesThroughLastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := New(testOptions(), nil).Do(context.Background(), port.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestDoFailsWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	opts := testOptions()
	opts.RetryMax = 0
	_, err := New(opts, nil).Do(context.Background(), port.Request{Method: http.MethodGet, URL: url})
	require.Error(t, err)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(testOptions(), nil).Do(ctx, port.Request{Method: http.MethodGet, URL: srv.URL})
	require.ErrorIs(t, err, context.Canceled)
}
