package driving

import (
	"context"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// RecognitionService is the user-facing boundary around the pipeline.
// It checks quota, runs identification, reconciles against the catalog
// and optionally saves the result to the user's collection.
type RecognitionService interface {
	// Recognize returns an error only for invalid input, missing identity
	// or an exhausted quota. Pipeline failures produce a response with
	// Identified set to false.
	Recognize(ctx context.Context, req domain.RecognitionRequest) (*domain.RecognitionResponse, error)
}

// IdentificationService runs the confidence-gated identification pipeline.
type IdentificationService interface {
	// Identify never returns an error; every failure becomes NOT_IDENTIFIED.
	Identify(ctx context.Context, image domain.Image, language string) domain.Outcome
}

// CatalogService manages and queries the curated catalog.
type CatalogService interface {
	// Import stores every entry, returning how many were written.
	Import(ctx context.Context, entries []domain.CatalogEntry) (int, error)

	// List returns all entries for the given language.
	List(ctx context.Context, language string) ([]domain.CatalogEntry, error)

	// Match runs the two-stage fuzzy cascade alone.
	// Returns nil, nil when nothing passes both stages.
	Match(ctx context.Context, title, artist, language string) (*domain.CatalogEntry, error)
}

// CollectionService reads a user's saved recognitions.
type CollectionService interface {
	List(ctx context.Context, userID string) ([]domain.CollectionItem, error)
}
