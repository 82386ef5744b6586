package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/artid/internal/collector"
	"github.com/custodia-labs/artid/internal/core/domain"
)

// fakeVision replies with scripted results in call order, repeating the last.
type fakeVision struct {
	mu      sync.Mutex
	results []domain.EvidenceResult
	hints   []domain.Hints
}

func (f *fakeVision) Identify(_ context.Context, _ domain.Image, hints domain.Hints) domain.EvidenceResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.hints)
	f.hints = append(f.hints, hints)
	if len(f.results) == 0 {
		return domain.NegativeEvidence(domain.SourceVision)
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i]
}

func (f *fakeVision) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hints)
}

type fakeText struct {
	mu     sync.Mutex
	result domain.EvidenceResult
	texts  []string
}

func (f *fakeText) Extract(_ context.Context, text string, _ domain.Hints) domain.EvidenceResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.result
}

func (f *fakeText) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type fakeSearch struct {
	evidence *domain.WebEvidence
	err      error
}

func (f *fakeSearch) Search(_ context.Context, _ domain.Image) (*domain.WebEvidence, error) {
	return f.evidence, f.err
}

type fakeCollector struct {
	mu         sync.Mutex
	collection collector.Collection
	calls      int
}

func (f *fakeCollector) Collect(_ context.Context, _ *domain.WebEvidence) collector.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.collection
}

type countingRenderer struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRenderer) Render(_ context.Context, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return "", nil
}

func (r *countingRenderer) Close() error { return nil }

var testImage = domain.Image{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}

func identified(confidence float64, title, artist string) domain.EvidenceResult {
	return domain.EvidenceResult{Identified: true, Confidence: confidence, Title: title, Artist: artist}
}

func pagesEvidence(urls ...string) *domain.WebEvidence {
	pages := make([]domain.WebPage, 0, len(urls))
	for _, u := range urls {
		pages = append(pages, domain.WebPage{URL: u})
	}
	return domain.NewWebEvidence(pages, nil,
		[]domain.WebLabel{{Text: "starry night"}},
		[]domain.WebEntity{{Description: "The Starry Night", Score: 0.9}})
}
