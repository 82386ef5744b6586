package collector

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/logger"
)

// Default collector configuration values.
const (
	DefaultFetchLimit    = 5
	DefaultTextBudget    = 5000
	DefaultMinTextChars  = 100
	DefaultRenderTimeout = 30 * time.Second
)

// Config holds configuration for the web evidence collector.
type Config struct {
	// FetchLimit caps how many ranked URLs are fetched (default: 5).
	FetchLimit int

	// TextBudget caps the extracted text per page, in runes (default: 5000).
	// The combined text is capped at three times this value.
	TextBudget int

	// MinTextChars is the combined length below which the yield is insufficient (default: 100).
	MinTextChars int

	// RenderTimeout bounds the headless render fallback (default: 30s).
	RenderTimeout time.Duration

	// Fetch configures the underlying page fetcher.
	Fetch FetchConfig
}

// PageText is the readable text extracted from one page.
type PageText struct {
	URL      string
	Text     string
	Rendered bool
}

// Collection is the combined text gathered from candidate pages.
type Collection struct {
	Text       string
	Pages      []PageText
	Fetched    int
	Failed     int
	Rendered   bool
	Sufficient bool
}

// Collector ranks, fetches and extracts text from reverse-search pages.
type Collector struct {
	fetcher  *Fetcher
	renderer driven.PageRenderer
	cfg      Config
}

// New creates a collector. The renderer is optional; nil disables the
// headless fallback.
func New(cfg Config, renderer driven.PageRenderer) *Collector {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.TextBudget <= 0 {
		cfg.TextBudget = DefaultTextBudget
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = DefaultMinTextChars
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}
	return &Collector{
		fetcher:  NewFetcher(cfg.Fetch),
		renderer: renderer,
		cfg:      cfg,
	}
}

// Collect gathers page text for the evidence's candidate pages.
// An empty candidate list returns an empty, insufficient collection
// without touching the network or the renderer.
func (c *Collector) Collect(ctx context.Context, evidence *domain.WebEvidence) Collection {
	urls := RankURLs(evidence.Pages())
	if len(urls) == 0 {
		return Collection{}
	}

	var col Collection
	for _, res := range c.fetcher.FetchAll(ctx, urls, c.cfg.FetchLimit) {
		if !res.OK() {
			col.Failed++
			logger.Debug("fetch %s failed: %v", res.URL, res.Err)
			continue
		}
		col.Fetched++
		if text := ExtractText(res.HTML, c.cfg.TextBudget); text != "" {
			col.Pages = append(col.Pages, PageText{URL: res.URL, Text: text})
		}
	}
	col.Text = c.join(col.Pages)

	if contentLen(col.Pages) < c.cfg.MinTextChars && c.renderer != nil {
		if page, ok := c.render(ctx, urls[0]); ok {
			col.Rendered = true
			col.Pages = replacePage(col.Pages, page)
			col.Text = c.join(col.Pages)
		}
	}

	col.Sufficient = contentLen(col.Pages) >= c.cfg.MinTextChars
	logger.Debug("collected %d chars from %d pages (%d failed, rendered=%t)",
		len(col.Text), len(col.Pages), col.Failed, col.Rendered)
	return col
}

func (c *Collector) render(ctx context.Context, url string) (PageText, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RenderTimeout)
	defer cancel()

	text, err := c.renderer.Render(ctx, url)
	if err != nil {
		logger.Warn("render %s: %v", url, err)
		return PageText{}, false
	}
	text = truncateRunes(collapseWhitespace(text), c.cfg.TextBudget)
	if text == "" {
		return PageText{}, false
	}
	return PageText{URL: url, Text: text, Rendered: true}, true
}

// join concatenates page texts under source headers, up to the combined budget.
func (c *Collector) join(pages []PageText) string {
	var b strings.Builder
	for _, p := range pages {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Source: ")
		b.WriteString(p.URL)
		b.WriteByte('\n')
		b.WriteString(p.Text)
	}
	return truncateRunes(b.String(), 3*c.cfg.TextBudget)
}

// replacePage puts the rendered page first, dropping any fetched copy of it.
func replacePage(pages []PageText, rendered PageText) []PageText {
	out := []PageText{rendered}
	for _, p := range pages {
		if p.URL != rendered.URL {
			out = append(out, p)
		}
	}
	return out
}

// contentLen counts extracted runes, excluding source headers.
func contentLen(pages []PageText) int {
	n := 0
	for _, p := range pages {
		n += utf8.RuneCountInString(p.Text)
	}
	return n
}
