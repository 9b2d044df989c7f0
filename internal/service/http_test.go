package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/service"
)

func newClient(name string) *service.HTTPClient {
	return service.NewHTTPClient(service.HTTPOptions{Name: name, Timeout: 2 * time.Second})
}

func TestGetJSONDecodesAndSetsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, service.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "v", r.URL.Query().Get("k"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	err := newClient("test").GetJSON(context.Background(), srv.URL, map[string][]string{"k": {"v"}}, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestNonSuccessStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	err := newClient("brave").GetJSON(context.Background(), srv.URL, nil, nil, &out)
	var uerr *service.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusTooManyRequests, uerr.StatusCode)
	assert.Equal(t, "brave", uerr.Service)
	assert.Contains(t, uerr.Error(), "quota exceeded")
}

func TestMalformedBodyIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newClient("x").GetJSON(context.Background(), srv.URL, nil, nil, &out)
	var uerr *service.UpstreamError
	assert.ErrorAs(t, err, &uerr)
}

func TestDeadlineIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var out map[string]any
	err := newClient("slow").GetJSON(ctx, srv.URL, nil, nil, &out)
	var uerr *service.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimiterRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := service.NewHTTPClient(service.HTTPOptions{Name: "slow", RateLimit: 0.01, Burst: 1})
	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, nil, &out))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.GetJSON(ctx, srv.URL, nil, nil, &out)
	var uerr *service.UpstreamError
	assert.ErrorAs(t, err, &uerr)
}
