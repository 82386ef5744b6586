package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/artid/internal/core/domain"
)

type scriptedIdentifier struct {
	outcome domain.Outcome
	calls   int
}

func (s *scriptedIdentifier) Identify(_ context.Context, _ domain.Image, _ string) domain.Outcome {
	s.calls++
	return s.outcome
}

type failingCollection struct{}

func (failingCollection) CreateCollectionItem(context.Context, string, *string, domain.Snapshot) (*domain.CollectionItem, error) {
	return nil, errors.New("disk full")
}

func (failingCollection) ListByUser(context.Context, string) ([]domain.CollectionItem, error) {
	return nil, nil
}

func starryNightCatalog() *CatalogService {
	store := memory.NewCatalogStore(
		domain.CatalogEntry{ID: "starry-night", Title: "The Starry Night", ArtistName: "Vincent van Gogh", Category: "post-impressionism"},
		domain.CatalogEntry{ID: "irises", Title: "Irises", ArtistName: "Vincent van Gogh"},
	)
	return NewCatalogService(store, 0.9)
}

func request(save bool) domain.RecognitionRequest {
	return domain.RecognitionRequest{UserID: "u1", Image: testImage, Language: "en", SaveToCollection: save}
}

func TestRecognize_EndToEndHighConfidenceMatch(t *testing.T) {
	vision := &fakeVision{results: []domain.EvidenceResult{identified(0.99, "Starry Night", "Van Gogh")}}
	identifier := NewIdentificationService(vision, nil, nil, nil, domain.DefaultPipelineSettings())
	collection := memory.NewCollectionStore()
	svc := NewRecognitionService(identifier, starryNightCatalog(), collection, memory.NewQuotaStore(10))

	resp, err := svc.Recognize(context.Background(), request(true))

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.Identified)
	assert.True(t, resp.SavedToCollection)
	require.NotNil(t, resp.Artwork)
	assert.Equal(t, "starry-night", resp.Artwork.CatalogEntryID)
	assert.Equal(t, "The Starry Night", resp.Artwork.Title)
	assert.Equal(t, "post-impressionism", resp.Artwork.Category)
	assert.Equal(t, domain.StageVisionHighConf, resp.Artwork.Stage)

	items, err := collection.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsLinked())
	assert.Equal(t, items[0].ID, resp.Artwork.CollectionItemID)
}

func TestRecognize_CustomRecordGetsInferredCategory(t *testing.T) {
	ev := identified(0.99, "Unknown Chapel Fresco", "Unknown")
	ev.Period = "Rinascimento"
	identifier := &scriptedIdentifier{outcome: domain.IdentifiedAt(domain.StageVisionHighConf, ev, nil)}
	collection := memory.NewCollectionStore()
	svc := NewRecognitionService(identifier, starryNightCatalog(), collection, nil)

	resp, err := svc.Recognize(context.Background(), request(true))

	require.NoError(t, err)
	require.NotNil(t, resp.Artwork)
	assert.Empty(t, resp.Artwork.CatalogEntryID)
	assert.Equal(t, "renaissance", resp.Artwork.Category)

	items, _ := collection.ListByUser(context.Background(), "u1")
	require.Len(t, items, 1)
	assert.False(t, items[0].IsLinked())
	assert.Equal(t, "renaissance", items[0].Snapshot.Category)
	assert.Equal(t, "Unknown Chapel Fresco", items[0].Snapshot.Title)
}

func TestRecognize_UnknownPeriodFallsBackToUnknown(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.IdentifiedAt(domain.StageTextAnalysis, identified(0.8, "Mystery", "Nobody"), nil)}
	svc := NewRecognitionService(identifier, nil, nil, nil)

	resp, err := svc.Recognize(context.Background(), request(false))

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryUnknown, resp.Artwork.Category)
	assert.False(t, resp.SavedToCollection)
}

func TestRecognize_NotIdentified(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.NotIdentified("nothing", nil)}
	collection := memory.NewCollectionStore()
	svc := NewRecognitionService(identifier, starryNightCatalog(), collection, nil)

	resp, err := svc.Recognize(context.Background(), request(true))

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.Identified)
	assert.Nil(t, resp.Artwork)
	assert.False(t, resp.SavedToCollection)
	assert.Equal(t, msgNotIdentified, resp.Message)
	items, _ := collection.ListByUser(context.Background(), "u1")
	assert.Empty(t, items)
}

func TestRecognize_QuotaExceeded(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.IdentifiedAt(domain.StageVisionHighConf, identified(0.99, "Irises", "Van Gogh"), nil)}
	quota := memory.NewQuotaStore(1)
	svc := NewRecognitionService(identifier, nil, nil, quota)

	_, err := svc.Recognize(context.Background(), request(false))
	require.NoError(t, err)

	_, err = svc.Recognize(context.Background(), request(false))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, 1, identifier.calls, "pipeline does not run once the quota is used up")
}

func TestRecognize_NotIdentifiedIsNotCharged(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.NotIdentified("nothing", nil)}
	quota := memory.NewQuotaStore(1)
	svc := NewRecognitionService(identifier, nil, nil, quota)

	for i := 0; i < 3; i++ {
		resp, err := svc.Recognize(context.Background(), request(false))
		require.NoError(t, err)
		assert.False(t, resp.Identified)
	}
	assert.Equal(t, 3, identifier.calls)
	assert.NoError(t, quota.Check(context.Background(), "u1"))
}

func TestRecognize_InvalidInput(t *testing.T) {
	identifier := &scriptedIdentifier{}
	svc := NewRecognitionService(identifier, nil, nil, memory.NewQuotaStore(5))

	_, err := svc.Recognize(context.Background(), domain.RecognitionRequest{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Recognize(context.Background(), domain.RecognitionRequest{Image: testImage})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	assert.Zero(t, identifier.calls)
}

func TestRecognize_AnonymousWithoutQuotaOrSave(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.NotIdentified("nothing", nil)}
	svc := NewRecognitionService(identifier, nil, nil, nil)

	resp, err := svc.Recognize(context.Background(), domain.RecognitionRequest{Image: testImage})

	require.NoError(t, err)
	assert.False(t, resp.Identified)
}

func TestRecognize_SaveFailureStillReturnsIdentification(t *testing.T) {
	identifier := &scriptedIdentifier{outcome: domain.IdentifiedAt(domain.StageVisionHighConf, identified(0.99, "Irises", "Van Gogh"), nil)}
	svc := NewRecognitionService(identifier, starryNightCatalog(), failingCollection{}, nil)

	resp, err := svc.Recognize(context.Background(), request(true))

	require.NoError(t, err)
	assert.True(t, resp.Identified)
	assert.False(t, resp.SavedToCollection)
	assert.Equal(t, msgSaveFailed, resp.Message)
	assert.Equal(t, "irises", resp.Artwork.CatalogEntryID)
}
