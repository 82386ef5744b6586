package driven

import (
	"context"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// CatalogStore provides read access to the curated catalog.
type CatalogStore interface {
	// FindAllCandidates returns every entry eligible for matching in the given language.
	// Entries without a translation are still returned with their base fields.
	FindAllCandidates(ctx context.Context, language string) ([]domain.CatalogEntry, error)

	// FindByID retrieves an entry. Returns domain.ErrNotFound if absent.
	FindByID(ctx context.Context, id string) (*domain.CatalogEntry, error)

	// Save stores or replaces an entry. Used by catalog import.
	Save(ctx context.Context, entry domain.CatalogEntry) error

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)
}

// CollectionStore persists user collection items.
type CollectionStore interface {
	// CreateCollectionItem stores a new item. catalogEntryID is nil for custom records.
	CreateCollectionItem(
		ctx context.Context,
		userID string,
		catalogEntryID *string,
		snapshot domain.Snapshot,
	) (*domain.CollectionItem, error)

	// ListByUser returns a user's items, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.CollectionItem, error)
}

// QuotaGate enforces a per-user recognition quota.
// Only the recognition boundary uses it; the pipeline never sees it.
type QuotaGate interface {
	// Check returns domain.ErrQuotaExceeded when the user has no requests left.
	Check(ctx context.Context, userID string) error

	// Increment records one successful recognition for the user.
	Increment(ctx context.Context, userID string) error
}
