package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ReverseImageSearcher = (*Client)(nil)

// Default configuration values.
const (
	DefaultMaxResults = 20
	DefaultTimeout    = 15 * time.Second

	featureWebDetection = "WEB_DETECTION"
)

// Config holds configuration for the Vision API client.
type Config struct {
	// APIKey authenticates with a Google Cloud API key.
	APIKey string

	// AccessToken authenticates with an OAuth2 bearer token. Used when APIKey is empty.
	AccessToken string

	// Endpoint overrides the API base URL. Useful for testing.
	Endpoint string

	// MaxResults caps results per web detection category (default: 20).
	MaxResults int

	// RateLimit bounds outgoing annotate calls.
	RateLimit RateLimitConfig

	// Timeout bounds each annotate call (default: 15s).
	Timeout time.Duration
}

// Client performs reverse-image search through WEB_DETECTION.
type Client struct {
	svc        *vision.Service
	limiter    *RateLimiter
	maxResults int64
	timeout    time.Duration
	policy     *bluemonday.Policy
}

// NewClient creates a Vision API client.
// Exactly one credential is used: the API key when set, else the bearer token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: vision API key or access token is required", domain.ErrReverseSearchUnavailable)
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(ensureTrailingSlash(cfg.Endpoint)))
	}

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}

	return &Client{
		svc:        svc,
		limiter:    NewRateLimiter(cfg.RateLimit),
		maxResults: int64(cfg.MaxResults),
		timeout:    cfg.Timeout,
		policy:     bluemonday.StrictPolicy(),
	}, nil
}

// Search runs WEB_DETECTION over the image and returns the normalised evidence.
func (c *Client) Search(ctx context.Context, image domain.Image) (*domain.WebEvidence, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image.Data)},
			Features: []*vision.Feature{{
				Type:       featureWebDetection,
				MaxResults: c.maxResults,
			}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(retryAfter(err))
		}
		return nil, WrapError(err)
	}

	if len(resp.Responses) == 0 {
		return domain.NewWebEvidence(nil, nil, nil, nil), nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrReverseSearchUnavailable, ErrBadImage, r.Error.Message)
	}

	return c.toEvidence(r.WebDetection), nil
}

// toEvidence maps a web detection into domain evidence, sanitising
// page titles and labels of the markup Google leaves in them.
func (c *Client) toEvidence(wd *vision.WebDetection) *domain.WebEvidence {
	if wd == nil {
		return domain.NewWebEvidence(nil, nil, nil, nil)
	}

	pages := make([]domain.WebPage, 0, len(wd.PagesWithMatchingImages))
	for _, p := range wd.PagesWithMatchingImages {
		if p == nil || p.Url == "" {
			continue
		}
		pages = append(pages, domain.WebPage{URL: p.Url, Title: c.clean(p.PageTitle)})
	}

	similar := make([]string, 0, len(wd.VisuallySimilarImages))
	for _, img := range wd.VisuallySimilarImages {
		if img != nil && img.Url != "" {
			similar = append(similar, img.Url)
		}
	}

	labels := make([]domain.WebLabel, 0, len(wd.BestGuessLabels))
	for _, l := range wd.BestGuessLabels {
		if l == nil {
			continue
		}
		if text := c.clean(l.Label); text != "" {
			labels = append(labels, domain.WebLabel{Text: text, Language: l.LanguageCode})
		}
	}

	entities := make([]domain.WebEntity, 0, len(wd.WebEntities))
	for _, e := range wd.WebEntities {
		if e == nil {
			continue
		}
		entities = append(entities, domain.WebEntity{Description: c.clean(e.Description), Score: e.Score})
	}

	return domain.NewWebEvidence(pages, similar, labels, entities)
}

func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

// retryAfter reads the Retry-After seconds from a googleapi error.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func ensureTrailingSlash(endpoint string) string {
	if strings.HasSuffix(endpoint, "/") {
		return endpoint
	}
	return endpoint + "/"
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
