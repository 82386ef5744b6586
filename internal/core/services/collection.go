package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService reads users' saved recognitions.
type CollectionService struct {
	store driven.CollectionStore
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store driven.CollectionStore) *CollectionService {
	return &CollectionService{store: store}
}

// List returns a user's items, newest first.
func (s *CollectionService) List(ctx context.Context, userID string) ([]domain.CollectionItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	return items, nil
}
