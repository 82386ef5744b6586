package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
	"github.com/custodia-labs/artid/internal/matching"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService imports, lists and matches catalog entries.
type CatalogService struct {
	store driven.CatalogStore

	mu      sync.RWMutex
	matcher *matching.Matcher
}

// NewCatalogService creates a catalog service matching at the given threshold.
func NewCatalogService(store driven.CatalogStore, threshold float64) *CatalogService {
	return &CatalogService{
		store:   store,
		matcher: matching.NewMatcher(threshold),
	}
}

// SetMatchThreshold replaces the similarity threshold for later matches.
func (s *CatalogService) SetMatchThreshold(threshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matcher = matching.NewMatcher(threshold)
}

// Import validates and stores entries. Entries without an ID get a UUID.
// It stops at the first invalid entry or store error.
func (s *CatalogService) Import(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	written := 0
	for i, entry := range entries {
		entry.Title = strings.TrimSpace(entry.Title)
		entry.ArtistName = strings.TrimSpace(entry.ArtistName)
		if entry.Title == "" {
			return written, fmt.Errorf("%w: entry %d has no title", domain.ErrInvalidInput, i)
		}
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		if err := s.store.Save(ctx, entry); err != nil {
			return written, fmt.Errorf("save entry %s: %w", entry.ID, err)
		}
		written++
	}
	logger.Info("imported %d catalog entries", written)
	return written, nil
}

// List returns all entries for the given language.
func (s *CatalogService) List(ctx context.Context, language string) ([]domain.CatalogEntry, error) {
	entries, err := s.store.FindAllCandidates(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return entries, nil
}

// Match runs the title then artist cascade over the catalog.
func (s *CatalogService) Match(ctx context.Context, title, artist, language string) (*domain.CatalogEntry, error) {
	entries, err := s.store.FindAllCandidates(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("load match candidates: %w", err)
	}

	s.mu.RLock()
	m := s.matcher
	s.mu.RUnlock()

	report := m.Explain(title, artist, entries, language)
	logger.Debug("catalog match %q / %q: title hits=%d artist hits=%d matched=%t",
		title, artist, report.TitleHits, report.ArtistHits, report.Entry != nil)
	return report.Entry, nil
}
