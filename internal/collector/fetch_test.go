package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(cfg FetchConfig) *Fetcher {
	if cfg.HostRate == 0 {
		cfg.HostRate = 1000
	}
	return NewFetcher(cfg)
}

func TestFetchAll_SettledInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<p>ok</p>"))
		case "/missing":
			http.NotFound(w, r)
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		case "/slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}
	}))
	defer srv.Close()

	f := testFetcher(FetchConfig{Timeout: 100 * time.Millisecond})
	urls := []string{srv.URL + "/missing", srv.URL + "/slow", srv.URL + "/ok", srv.URL + "/json"}

	results := f.FetchAll(context.Background(), urls, 10)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, urls[i], r.URL)
	}
	assert.Error(t, results[0].Err)
	assert.Equal(t, http.StatusNotFound, results[0].Status)
	assert.Error(t, results[1].Err)
	require.True(t, results[2].OK())
	assert.Equal(t, "<p>ok</p>", results[2].HTML)
	assert.True(t, errors.Is(results[3].Err, ErrNotHTML))
}

func TestFetchAll_RespectsLimit(t *testing.T) {
	hits := make(chan string, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3", srv.URL + "/4"}
	results := testFetcher(FetchConfig{}).FetchAll(context.Background(), urls, 2)

	assert.Len(t, results, 2)
	assert.Len(t, hits, 2)
}

func TestFetchAll_CapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer srv.Close()

	results := testFetcher(FetchConfig{MaxBodyBytes: 64}).FetchAll(context.Background(), []string{srv.URL}, 1)

	require.True(t, results[0].OK())
	assert.Len(t, results[0].HTML, 64)
}

func TestFetchAll_SendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	testFetcher(FetchConfig{}).FetchAll(context.Background(), []string{srv.URL}, 1)

	assert.Equal(t, DefaultUserAgent, ua)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := testFetcher(FetchConfig{}).FetchAll(ctx, []string{"http://127.0.0.1:1/a", "http://127.0.0.1:1/b"}, 5)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}

func TestFetchAll_LimitsDoNotCarryAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	// Burst covers one call; a limiter shared between calls would stall for seconds.
	f := NewFetcher(FetchConfig{HostRate: 0.2})
	urls := []string{srv.URL + "/a", srv.URL + "/b"}

	for i := 0; i < 5; i++ {
		start := time.Now()
		results := f.FetchAll(context.Background(), urls, 2)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.True(t, r.OK(), "call %d: %v", i, r.Err)
		}
		assert.Less(t, time.Since(start), 2*time.Second, "call %d waited on an earlier call's budget", i)
	}
}

func TestHostLimiters_OnePerHost(t *testing.T) {
	h := newHostLimiters(1)

	a := h.get("https://museum.example/a")
	assert.Same(t, a, h.get("https://museum.example/b"))
	assert.NotSame(t, a, h.get("https://other.example/a"))
	assert.Len(t, h.limiters, 2)
}
