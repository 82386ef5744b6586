package driven

import (
	"context"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// VisionSource identifies an artwork from image bytes.
// It never returns an error: transport, timeout and parse failures
// all degrade to domain.NegativeEvidence.
type VisionSource interface {
	Identify(ctx context.Context, image domain.Image, hints domain.Hints) domain.EvidenceResult
}

// TextSource extracts an identification from scraped page text plus hints.
// Like VisionSource, failures degrade to negative evidence.
type TextSource interface {
	Extract(ctx context.Context, text string, hints domain.Hints) domain.EvidenceResult
}

// ReverseImageSearcher finds web pages, labels and entities for an image.
type ReverseImageSearcher interface {
	Search(ctx context.Context, image domain.Image) (*domain.WebEvidence, error)
}

// PageRenderer loads a page in a headless browser and returns its visible text.
type PageRenderer interface {
	// Render navigates to url, waits for the page to settle and returns
	// body text with scripts and styles removed.
	Render(ctx context.Context, url string) (string, error)

	// Close shuts the browser down.
	Close() error
}
