// Package browser provides a headless Chrome page renderer using chromedp.
//
// The browser process starts lazily on the first Render and is shared by all
// later calls. It is relaunched when a start fails or the process exits.
// Each Render opens its own tab, so concurrent renders are safe.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// Default configuration values.
const (
	DefaultIdleWait  = 5 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// DefaultBlockedURLs skips heavy resources that never carry readable text.
var DefaultBlockedURLs = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.avif", "*.svg", "*.ico",
	"*.css",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3", "*.ogg",
	"*doubleclick.net*", "*google-analytics.com*", "*googletagmanager.com*",
}

// visibleTextJS returns body text with script, style and noscript removed.
const visibleTextJS = `(() => {
	if (!document.body) { return ""; }
	const body = document.body.cloneNode(true);
	body.querySelectorAll("script, style, noscript").forEach((el) => el.remove());
	return body.innerText || body.textContent || "";
})()`

// ErrClosed indicates Render was called after Close.
var ErrClosed = errors.New("browser: renderer closed")

// Config holds configuration for the renderer.
type Config struct {
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup.
	ExecPath string

	// UserAgent is sent by every tab.
	UserAgent string

	// IdleWait bounds how long to wait for network idle after load (default: 5s).
	IdleWait time.Duration

	// BlockedURLs are URL patterns the browser never requests.
	BlockedURLs []string

	// NoSandbox disables the Chrome sandbox, required in most containers.
	NoSandbox bool
}

// Renderer loads pages in headless Chrome and extracts their visible text.
type Renderer struct {
	cfg Config

	mu         sync.Mutex
	browserCtx context.Context
	stop       func()
	closed     bool
}

// NewRenderer creates a renderer. No browser is started until the first Render.
func NewRenderer(cfg Config) *Renderer {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = DefaultIdleWait
	}
	if cfg.BlockedURLs == nil {
		cfg.BlockedURLs = DefaultBlockedURLs
	}
	return &Renderer{cfg: cfg}
}

// browser returns the shared browser context, launching Chrome when none is
// running. A failed launch is not remembered, and a browser whose context has
// ended is replaced.
func (r *Renderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, nil
	}
	if r.stop != nil {
		logger.Debug("headless browser exited, restarting")
		r.stop()
		r.browserCtx, r.stop = nil, nil
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.UserAgent(r.cfg.UserAgent),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	if r.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	stop := func() {
		browserCancel()
		allocCancel()
	}

	// An empty Run launches the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		stop()
		return nil, fmt.Errorf("%w: start chrome: %w", domain.ErrRendererUnavailable, err)
	}

	r.browserCtx, r.stop = browserCtx, stop
	logger.Debug("headless browser started")
	return browserCtx, nil
}

// Render navigates to url in a new tab, waits for load plus network idle
// (bounded by IdleWait and ctx), and returns the visible body text.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, err := r.browser()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	idle := make(chan struct{})
	var idleOnce sync.Once
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			idleOnce.Do(func() { close(idle) })
		}
	})

	err = chromedp.Run(tabCtx,
		network.Enable(),
		network.SetBlockedURLS(r.cfg.BlockedURLs),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, contextErr(ctx, err))
	}

	timer := time.NewTimer(r.cfg.IdleWait)
	defer timer.Stop()
	select {
	case <-idle:
	case <-timer.C:
		logger.Debug("render %s: network idle not reached, reading anyway", url)
	case <-ctx.Done():
		return "", fmt.Errorf("render %s: %w", url, ctx.Err())
	}

	var text string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(visibleTextJS, &text)); err != nil {
		return "", fmt.Errorf("render %s: extract text: %w", url, contextErr(ctx, err))
	}
	return text, nil
}

// contextErr prefers the caller's context error over chromedp's own.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close shuts the browser down. It is safe to call more than once.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.stop != nil {
		r.stop()
		r.browserCtx, r.stop = nil, nil
	}
	return nil
}
