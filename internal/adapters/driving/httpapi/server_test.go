package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/core/domain"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fakeRecognition struct {
	resp *domain.RecognitionResponse
	err  error
	last domain.RecognitionRequest
}

func (f *fakeRecognition) Recognize(_ context.Context, req domain.RecognitionRequest) (*domain.RecognitionResponse, error) {
	f.last = req
	return f.resp, f.err
}

type fakeCatalog struct {
	entries []domain.CatalogEntry
}

func (f *fakeCatalog) Import(_ context.Context, entries []domain.CatalogEntry) (int, error) {
	return len(entries), nil
}

func (f *fakeCatalog) List(_ context.Context, _ string) ([]domain.CatalogEntry, error) {
	return f.entries, nil
}

func (f *fakeCatalog) Match(_ context.Context, _, _, _ string) (*domain.CatalogEntry, error) {
	return nil, nil
}

type fakeCollection struct {
	items []domain.CollectionItem
}

func (f *fakeCollection) List(_ context.Context, _ string) ([]domain.CollectionItem, error) {
	return f.items, nil
}

func identified() *domain.RecognitionResponse {
	return &domain.RecognitionResponse{
		Success:    true,
		Identified: true,
		Artwork:    &domain.ArtworkView{Title: "Mona Lisa", Confidence: 0.99, Stage: domain.StageVisionHighConf},
		Message:    "Artwork identified",
	}
}

func newTestServer(t *testing.T, rec *fakeRecognition) http.Handler {
	t.Helper()
	s, err := NewServer(Config{MaxImageBytes: 1024}, Services{
		Recognition: rec,
		Catalog:     &fakeCatalog{entries: []domain.CatalogEntry{{ID: "c1", Title: "Pietà"}}},
		Collection:  &fakeCollection{},
	})
	require.NoError(t, err)
	return s.Handler()
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestNewServer_RequiresRecognition(t *testing.T) {
	_, err := NewServer(Config{}, Services{})
	assert.ErrorIs(t, err, ErrMissingRecognitionService)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &fakeRecognition{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRecognize_Multipart(t *testing.T) {
	fake := &fakeRecognition{resp: identified()}
	h := newTestServer(t, fake)

	body, contentType := multipartBody(t, map[string]string{
		"language": "it",
		"user_id":  "u1",
		"save":     "true",
	}, jpegBytes)
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp domain.RecognitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Identified)
	assert.Equal(t, "Mona Lisa", resp.Artwork.Title)

	assert.Equal(t, "it", fake.last.Language)
	assert.Equal(t, "u1", fake.last.UserID)
	assert.True(t, fake.last.SaveToCollection)
	assert.Equal(t, jpegBytes, fake.last.Image.Data)
	assert.Equal(t, "image/jpeg", fake.last.Image.MIMEType)
}

func TestRecognize_JSON(t *testing.T) {
	fake := &fakeRecognition{resp: identified()}
	h := newTestServer(t, fake)

	payload, err := json.Marshal(map[string]any{
		"image_base64": base64.StdEncoding.EncodeToString(jpegBytes),
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "header-user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "header-user", fake.last.UserID)
	assert.Equal(t, defaultLanguage, fake.last.Language)
	assert.False(t, fake.last.SaveToCollection)
}

func TestRecognize_NotIdentifiedKeepsShape(t *testing.T) {
	fake := &fakeRecognition{resp: &domain.RecognitionResponse{
		Success: true, Identified: false, Message: "Could not identify the artwork.",
	}}
	h := newTestServer(t, fake)

	body, contentType := multipartBody(t, nil, jpegBytes)
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"identified":false,"artwork":null,"savedToCollection":false,"message":"Could not identify the artwork."}`,
		rec.Body.String())
}

func TestRecognize_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"auth required", domain.ErrAuthRequired, http.StatusUnauthorized},
		{"quota exceeded", domain.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeRecognition{err: tt.err})

			body, contentType := multipartBody(t, nil, jpegBytes)
			req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp domain.RecognitionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
		})
	}
}

func TestRecognize_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body func(t *testing.T) (*bytes.Buffer, string)
	}{
		{"missing file", func(t *testing.T) (*bytes.Buffer, string) {
			return multipartBody(t, map[string]string{"language": "en"}, nil)
		}},
		{"oversized file", func(t *testing.T) (*bytes.Buffer, string) {
			return multipartBody(t, nil, bytes.Repeat([]byte{0xFF}, 2048))
		}},
		{"bad save flag", func(t *testing.T) (*bytes.Buffer, string) {
			return multipartBody(t, map[string]string{"save": "maybe"}, jpegBytes)
		}},
		{"bad base64", func(_ *testing.T) (*bytes.Buffer, string) {
			return bytes.NewBufferString(`{"image_base64": "%%%"}`), "application/json"
		}},
		{"json without image", func(_ *testing.T) (*bytes.Buffer, string) {
			return bytes.NewBufferString(`{"language": "en"}`), "application/json"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRecognition{resp: identified()}
			h := newTestServer(t, fake)

			body, contentType := tt.body(t)
			req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// countingReader records how many bytes the handler pulled from the body.
type countingReader struct {
	r    io.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}

func TestRecognize_OversizedJSONIsNotBuffered(t *testing.T) {
	fake := &fakeRecognition{resp: identified()}
	h := newTestServer(t, fake)

	total := 4 << 20
	body := &countingReader{r: io.MultiReader(
		strings.NewReader(`{"image_base64": "`),
		strings.NewReader(strings.Repeat("A", total)),
		strings.NewReader(`"}`),
	)}
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "image exceeds 1024 bytes")
	assert.Less(t, body.read, total/4, "body is cut off near the configured limit")
	assert.Empty(t, fake.last.Image.Data)
}

func TestListCatalog(t *testing.T) {
	h := newTestServer(t, &fakeRecognition{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog?language=it", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pietà")
}

func TestListCollection(t *testing.T) {
	h := newTestServer(t, &fakeRecognition{})

	t.Run("own collection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/collections/u1", http.NoBody)
		req.Header.Set(headerUserID, "u1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", rec.Body.String())
	})

	t.Run("another user's collection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/collections/u1", http.NoBody)
		req.Header.Set(headerUserID, "u2")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestMimeOr(t *testing.T) {
	assert.Equal(t, "image/png", mimeOr("image/png", jpegBytes))
	assert.Equal(t, "image/jpeg", mimeOr("application/octet-stream", jpegBytes))
}
