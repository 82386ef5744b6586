package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	mu    sync.RWMutex
	items []domain.CollectionItem
	now   func() time.Time
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{now: time.Now}
}

// CreateCollectionItem stores a new item with a fresh ID.
func (s *CollectionStore) CreateCollectionItem(
	_ context.Context, userID string, catalogEntryID *string, snapshot domain.Snapshot,
) (*domain.CollectionItem, error) {
	item := domain.CollectionItem{
		ID:             uuid.New().String(),
		UserID:         userID,
		CatalogEntryID: copyID(catalogEntryID),
		Snapshot:       snapshot,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	return &item, nil
}

// ListByUser returns a user's items, newest first.
func (s *CollectionStore) ListByUser(_ context.Context, userID string) ([]domain.CollectionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CollectionItem, 0)
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].UserID == userID {
			result = append(result, s.items[i])
		}
	}
	return result, nil
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
