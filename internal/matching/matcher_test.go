package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/core/domain"
)

func catalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{
			ID:         "mona-lisa",
			Title:      "Mona Lisa",
			ArtistName: "Leonardo da Vinci",
			Translations: map[string]domain.LocalizedFields{
				"it": {Title: "La Gioconda", ArtistName: "Leonardo da Vinci"},
			},
		},
		{ID: "anon-gioconda", Title: "La Gioconda", ArtistName: "Anonymous"},
		{ID: "starry-night", Title: "The Starry Night", ArtistName: "Vincent van Gogh"},
	}
}

func TestMatch_TitleThenArtistCascade(t *testing.T) {
	m := NewMatcher(0.9)

	report := m.Explain("La Gioconda", "Leonardo", catalog(), "it")

	require.NotNil(t, report.Entry)
	assert.Equal(t, "mona-lisa", report.Entry.ID)
	assert.Equal(t, 2, report.TitleHits)
	assert.True(t, report.ArtistEvaluated)
	assert.Equal(t, 1, report.ArtistHits)
}

func TestMatch_TranslationsFromOtherLanguages(t *testing.T) {
	got := NewMatcher(0.9).Match("La Gioconda", "Leonardo da Vinci", catalog(), "en")

	require.NotNil(t, got)
	assert.Equal(t, "mona-lisa", got.ID)
}

func TestMatch_NoTitleHitSkipsArtistStage(t *testing.T) {
	report := NewMatcher(0.9).Explain("The Night Watch", "Leonardo da Vinci", catalog(), "en")

	assert.Nil(t, report.Entry)
	assert.Zero(t, report.TitleHits)
	assert.False(t, report.ArtistEvaluated)
}

func TestMatch_NoArtistHitPropagatesNil(t *testing.T) {
	report := NewMatcher(0.9).Explain("Mona Lisa", "Pablo Picasso", catalog(), "en")

	assert.Nil(t, report.Entry)
	assert.Equal(t, 1, report.TitleHits)
	assert.True(t, report.ArtistEvaluated)
	assert.Zero(t, report.ArtistHits)
}

func TestMatch_TiesKeepInputOrder(t *testing.T) {
	entries := []domain.CatalogEntry{
		{ID: "first", Title: "Sunflowers", ArtistName: "Vincent van Gogh"},
		{ID: "second", Title: "Sunflowers", ArtistName: "Vincent van Gogh"},
	}

	got := NewMatcher(0.9).Match("Sunflowers", "Van Gogh", entries, "en")

	require.NotNil(t, got)
	assert.Equal(t, "first", got.ID)
}

func TestMatch_ThresholdIsInclusive(t *testing.T) {
	entries := []domain.CatalogEntry{{ID: "x", Title: "abcdefghik", ArtistName: "abcdefghik"}}

	assert.NotNil(t, NewMatcher(0.9).Match("abcdefghij", "abcdefghij", entries, ""))
	assert.Nil(t, NewMatcher(0.95).Match("abcdefghij", "abcdefghij", entries, ""))
}

func TestMatch_NormalizesBothSides(t *testing.T) {
	entries := []domain.CatalogEntry{{ID: "dejeuner", Title: "Le Déjeuner sur l'herbe", ArtistName: "Édouard Manet"}}

	got := NewMatcher(0.9).Match("dejeuner sur l’Herbe", "EDOUARD MANET", entries, "fr")

	require.NotNil(t, got)
	assert.Equal(t, "dejeuner", got.ID)
}

func TestMatch_EmptyInputs(t *testing.T) {
	m := NewMatcher(0)
	assert.Equal(t, DefaultThreshold, m.Threshold)
	assert.Nil(t, m.Match("", "Leonardo", catalog(), "en"))
	assert.Nil(t, m.Match("Mona Lisa", "Leonardo", nil, "en"))
}

func TestMatch_ReturnsCopy(t *testing.T) {
	entries := catalog()

	got := NewMatcher(0.9).Match("The Starry Night", "van Gogh", entries, "en")
	require.NotNil(t, got)
	got.Title = "changed"

	assert.Equal(t, "The Starry Night", entries[2].Title)
}
