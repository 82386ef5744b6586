package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default fetch configuration values.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "Mozilla/5.0 (compatible; artid/1.0; +https://github.com/custodia-labs/artid)"

	defaultHostRate  = 2.0
	defaultHostBurst = 2
)

// ErrNotHTML indicates the response was not an HTML document.
var ErrNotHTML = errors.New("collector: response is not HTML")

// FetchConfig holds configuration for the page fetcher.
type FetchConfig struct {
	// Timeout bounds each request independently (default: 10s).
	Timeout time.Duration

	// MaxBodyBytes caps how much of each body is read (default: 5 MiB).
	MaxBodyBytes int64

	// UserAgent is sent with every request.
	UserAgent string

	// HostRate limits sustained requests per second to a single host (default: 2).
	HostRate float64

	// Client overrides the HTTP client. Useful for testing.
	Client *http.Client
}

// FetchResult is the settled outcome of one page fetch.
// Exactly one of HTML or Err is meaningful.
type FetchResult struct {
	URL    string
	HTML   string
	Status int
	Err    error
}

// OK reports whether the fetch produced a body.
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Fetcher downloads candidate pages concurrently. It holds no per-request
// state, so one Fetcher can serve any number of concurrent pipelines.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
	hostRate  rate.Limit
}

// NewFetcher creates a fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HostRate <= 0 {
		cfg.HostRate = defaultHostRate
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		client:    client,
		timeout:   cfg.Timeout,
		maxBytes:  cfg.MaxBodyBytes,
		userAgent: cfg.UserAgent,
		hostRate:  rate.Limit(cfg.HostRate),
	}
}

// FetchAll fetches up to limit URLs concurrently and returns one settled
// result per attempted URL, in input order. A failing fetch never affects
// its siblings. Per-host rate limits apply within one call only.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, limit int) []FetchResult {
	if limit <= 0 || limit > len(urls) {
		limit = len(urls)
	}
	results := make([]FetchResult, limit)
	limiters := newHostLimiters(f.hostRate)

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.fetch(ctx, urls[i], limiters)
		}(i)
	}
	wg.Wait()
	return results
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, limiters *hostLimiters) FetchResult {
	result := FetchResult{URL: rawURL}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := limiters.get(rawURL).Wait(ctx); err != nil {
		result.Err = fmt.Errorf("rate limit wait: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("send request: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return result
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		result.Err = fmt.Errorf("%w: %s", ErrNotHTML, ct)
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		result.Err = fmt.Errorf("read body: %w", err)
		return result
	}
	result.HTML = string(body)
	return result
}

// hostLimiters hands out one rate limiter per host for a single FetchAll.
type hostLimiters struct {
	rate rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostLimiters(r rate.Limit) *hostLimiters {
	return &hostLimiters{rate: r, limiters: make(map[string]*rate.Limiter)}
}

func (h *hostLimiters) get(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.rate, defaultHostBurst)
		h.limiters[host] = l
	}
	return l
}
