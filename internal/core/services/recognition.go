package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/artid/internal/category"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure RecognitionService implements the interface.
var _ driving.RecognitionService = (*RecognitionService)(nil)

// Response messages.
const (
	msgIdentified    = "Artwork identified"
	msgSaved         = "Artwork identified and saved to your collection"
	msgSaveFailed    = "Artwork identified, but it could not be saved to your collection"
	msgNotIdentified = "Could not identify the artwork. Try a closer, well-lit photo."
)

// RecognitionService wraps the pipeline with quota, catalog reconciliation,
// category inference and collection persistence.
type RecognitionService struct {
	identifier driving.IdentificationService
	catalog    driving.CatalogService
	collection driven.CollectionStore
	quota      driven.QuotaGate
}

// NewRecognitionService creates the recognition boundary.
// The catalog, collection store and quota gate are optional (can be nil).
func NewRecognitionService(
	identifier driving.IdentificationService,
	catalog driving.CatalogService,
	collection driven.CollectionStore,
	quota driven.QuotaGate,
) *RecognitionService {
	return &RecognitionService{
		identifier: identifier,
		catalog:    catalog,
		collection: collection,
		quota:      quota,
	}
}

// Recognize identifies the photo in req and shapes the client response.
func (s *RecognitionService) Recognize(
	ctx context.Context, req domain.RecognitionRequest,
) (*domain.RecognitionResponse, error) {
	if len(req.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrInvalidInput)
	}
	if req.UserID == "" && (s.quota != nil || req.SaveToCollection) {
		return nil, domain.ErrAuthRequired
	}

	if s.quota != nil {
		if err := s.quota.Check(ctx, req.UserID); err != nil {
			return nil, fmt.Errorf("check quota: %w", err)
		}
	}

	outcome := s.identifier.Identify(ctx, req.Image, req.Language)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !outcome.Identified {
		logger.Info("not identified: %s", outcome.Reason)
		return &domain.RecognitionResponse{
			Success:    true,
			Identified: false,
			Artwork:    nil,
			Message:    msgNotIdentified,
		}, nil
	}

	// Only successful identifications are charged.
	if s.quota != nil {
		if err := s.quota.Increment(ctx, req.UserID); err != nil {
			logger.Warn("increment quota for %s: %v", req.UserID, err)
		}
	}

	s.reconcile(ctx, &outcome, req.Language)

	view := domain.ViewOf(outcome, req.Language)
	resp := &domain.RecognitionResponse{
		Success:    true,
		Identified: true,
		Artwork:    view,
		Message:    msgIdentified,
	}

	if req.SaveToCollection && s.collection != nil {
		item, err := s.save(ctx, req.UserID, outcome)
		if err != nil {
			logger.Warn("save collection item: %v", err)
			resp.Message = msgSaveFailed
		} else {
			resp.SavedToCollection = true
			resp.Message = msgSaved
			view.CollectionItemID = item.ID
		}
	}

	return resp, nil
}

// reconcile attaches the matching catalog entry, or infers a category for
// a custom record. A catalog failure leaves the result unmatched.
func (s *RecognitionService) reconcile(ctx context.Context, outcome *domain.Outcome, language string) {
	if s.catalog != nil {
		match, err := s.catalog.Match(ctx, outcome.Evidence.Title, outcome.Evidence.Artist, language)
		if err != nil {
			logger.Warn("catalog match: %v", err)
		}
		outcome.Match = match
	}

	if outcome.Match != nil {
		outcome.Category = outcome.Match.Category
		return
	}
	outcome.Category = category.MapPeriodToCategory(outcome.Evidence.Period)
}

func (s *RecognitionService) save(ctx context.Context, userID string, outcome domain.Outcome) (*domain.CollectionItem, error) {
	var entryID *string
	if outcome.Match != nil {
		id := outcome.Match.ID
		entryID = &id
	}
	snapshot := domain.SnapshotOf(outcome.Evidence, outcome.Category)
	return s.collection.CreateCollectionItem(ctx, userID, entryID, snapshot)
}
