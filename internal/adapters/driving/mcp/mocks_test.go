package mcp

import (
	"context"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// mockRecognitionService is a mock implementation of driving.RecognitionService.
type mockRecognitionService struct {
	resp *domain.RecognitionResponse
	err  error
	last domain.RecognitionRequest
}

func (m *mockRecognitionService) Recognize(
	_ context.Context,
	req domain.RecognitionRequest,
) (*domain.RecognitionResponse, error) {
	m.last = req
	return m.resp, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	entries []domain.CatalogEntry
	match   *domain.CatalogEntry
	err     error
}

func (m *mockCatalogService) Import(_ context.Context, entries []domain.CatalogEntry) (int, error) {
	return len(entries), m.err
}

func (m *mockCatalogService) List(_ context.Context, _ string) ([]domain.CatalogEntry, error) {
	return m.entries, m.err
}

func (m *mockCatalogService) Match(_ context.Context, _, _, _ string) (*domain.CatalogEntry, error) {
	return m.match, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	items []domain.CollectionItem
	err   error
	user  string
}

func (m *mockCollectionService) List(_ context.Context, userID string) ([]domain.CollectionItem, error) {
	m.user = userID
	return m.items, m.err
}
