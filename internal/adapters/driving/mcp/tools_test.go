package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/core/domain"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func TestServer_handleRecognize(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards request and returns response", func(t *testing.T) {
		rec := &mockRecognitionService{resp: &domain.RecognitionResponse{
			Success:    true,
			Identified: true,
			Artwork:    &domain.ArtworkView{Title: "Mona Lisa", Confidence: 0.99},
			Message:    "Artwork identified",
		}}
		server, err := NewServer(&Ports{Recognition: rec})
		require.NoError(t, err)

		_, out, err := server.handleRecognize(ctx, nil, RecognizeInput{
			ImageBase64: base64.StdEncoding.EncodeToString(jpegBytes),
			UserID:      "u1",
			Save:        true,
		})

		require.NoError(t, err)
		assert.True(t, out.Identified)
		assert.Equal(t, "Mona Lisa", out.Artwork.Title)
		assert.Equal(t, "u1", rec.last.UserID)
		assert.Equal(t, "en", rec.last.Language)
		assert.True(t, rec.last.SaveToCollection)
		assert.Equal(t, "image/jpeg", rec.last.Image.MIMEType)
		assert.Equal(t, jpegBytes, rec.last.Image.Data)
	})

	t.Run("invalid base64 is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Recognition: &mockRecognitionService{}})
		require.NoError(t, err)

		_, _, err = server.handleRecognize(ctx, nil, RecognizeInput{ImageBase64: "%%%"})

		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("service error propagates", func(t *testing.T) {
		rec := &mockRecognitionService{err: domain.ErrQuotaExceeded}
		server, err := NewServer(&Ports{Recognition: rec})
		require.NoError(t, err)

		_, _, err = server.handleRecognize(ctx, nil, RecognizeInput{
			ImageBase64: base64.StdEncoding.EncodeToString(jpegBytes),
		})

		assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
	})
}

func TestServer_handleLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("found returns localized fields", func(t *testing.T) {
		catalog := &mockCatalogService{match: &domain.CatalogEntry{
			ID:         "c1",
			Title:      "Mona Lisa",
			ArtistName: "Leonardo da Vinci",
			Category:   "renaissance",
			Translations: map[string]domain.LocalizedFields{
				"it": {Title: "La Gioconda"},
			},
		}}
		server, err := NewServer(&Ports{Recognition: &mockRecognitionService{}, Catalog: catalog})
		require.NoError(t, err)

		_, out, err := server.handleLookup(ctx, nil, LookupInput{Title: "gioconda", Language: "it"})

		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Equal(t, "c1", out.ID)
		assert.Equal(t, "La Gioconda", out.Title)
		assert.Equal(t, "Leonardo da Vinci", out.Artist)
	})

	t.Run("no match", func(t *testing.T) {
		server, err := NewServer(&Ports{Recognition: &mockRecognitionService{}, Catalog: &mockCatalogService{}})
		require.NoError(t, err)

		_, out, err := server.handleLookup(ctx, nil, LookupInput{Title: "unknown"})

		require.NoError(t, err)
		assert.False(t, out.Found)
	})
}

func TestDecodeImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(jpegBytes)

	t.Run("data URL carries MIME type", func(t *testing.T) {
		img, err := decodeImage("data:image/png;base64,"+encoded, "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, jpegBytes, img.Data)
	})

	t.Run("explicit MIME type wins", func(t *testing.T) {
		img, err := decodeImage(encoded, "image/webp")
		require.NoError(t, err)
		assert.Equal(t, "image/webp", img.MIMEType)
	})

	t.Run("data URL without payload", func(t *testing.T) {
		_, err := decodeImage("data:image/png;base64", "")
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestLoadImage_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes, 0o600))

	img, err := loadImage(RecognizeInput{ImagePath: path})

	require.NoError(t, err)
	assert.Equal(t, jpegBytes, img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	_, err = loadImage(RecognizeInput{ImagePath: filepath.Join(t.TempDir(), "missing.jpg")})
	assert.ErrorIs(t, err, ErrInvalidImage)
}
