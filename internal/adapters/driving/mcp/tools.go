package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// RecognizeInput is the input schema for the recognize_artwork tool.
type RecognizeInput struct {
	ImagePath   string `json:"image_path,omitempty" jsonschema:"path to a photograph on the server's filesystem"`
	ImageBase64 string `json:"image_base64,omitempty" jsonschema:"the photograph, base64 encoded or as a data URL"`
	MIMEType    string `json:"mime_type,omitempty" jsonschema:"image MIME type (detected when omitted)"`
	Language    string `json:"language,omitempty" jsonschema:"two-letter language code for the answer (default en)"`
	UserID      string `json:"user_id,omitempty" jsonschema:"identity charged for quota and used for saving"`
	Save        bool   `json:"save,omitempty" jsonschema:"save the identified artwork to the user's collection"`
}

// RecognizeOutput mirrors the HTTP recognition response.
type RecognizeOutput struct {
	Success           bool                `json:"success"`
	Identified        bool                `json:"identified"`
	Artwork           *domain.ArtworkView `json:"artwork,omitempty"`
	SavedToCollection bool                `json:"savedToCollection"`
	Message           string              `json:"message"`
}

// LookupInput is the input schema for the catalog_lookup tool.
type LookupInput struct {
	Title    string `json:"title" jsonschema:"artwork title to match"`
	Artist   string `json:"artist,omitempty" jsonschema:"artist name to confirm the match"`
	Language string `json:"language,omitempty" jsonschema:"two-letter language code for localized fields"`
}

// LookupOutput is the output schema for the catalog_lookup tool.
type LookupOutput struct {
	Found    bool   `json:"found"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Category string `json:"category,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recognize_artwork",
		Description: "Identify the artwork or monument shown in a photograph",
	}, s.handleRecognize)

	if s.ports.Catalog != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "catalog_lookup",
			Description: "Find a curated catalog entry by title and artist",
		}, s.handleLookup)
	}
}

// handleRecognize handles the recognize_artwork tool invocation.
func (s *Server) handleRecognize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecognizeInput,
) (*mcp.CallToolResult, RecognizeOutput, error) {
	image, err := loadImage(input)
	if err != nil {
		return nil, RecognizeOutput{}, err
	}

	language := input.Language
	if language == "" {
		language = "en"
	}

	resp, err := s.ports.Recognition.Recognize(ctx, domain.RecognitionRequest{
		UserID:           input.UserID,
		Image:            image,
		Language:         language,
		SaveToCollection: input.Save,
	})
	if err != nil {
		return nil, RecognizeOutput{}, err
	}

	return nil, RecognizeOutput{
		Success:           resp.Success,
		Identified:        resp.Identified,
		Artwork:           resp.Artwork,
		SavedToCollection: resp.SavedToCollection,
		Message:           resp.Message,
	}, nil
}

// handleLookup handles the catalog_lookup tool invocation.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	entry, err := s.ports.Catalog.Match(ctx, input.Title, input.Artist, input.Language)
	if err != nil {
		return nil, LookupOutput{}, err
	}
	if entry == nil {
		return nil, LookupOutput{Found: false}, nil
	}

	title, artist := entry.Localized(input.Language)
	return nil, LookupOutput{
		Found:    true,
		ID:       entry.ID,
		Title:    title,
		Artist:   artist,
		Category: entry.Category,
	}, nil
}

func loadImage(input RecognizeInput) (domain.Image, error) {
	if input.ImagePath != "" {
		data, err := os.ReadFile(input.ImagePath)
		if err != nil {
			return domain.Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		mimeType := input.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		return domain.Image{Data: data, MIMEType: mimeType}, nil
	}
	return decodeImage(input.ImageBase64, input.MIMEType)
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(encoded, mimeType string) (domain.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found {
			return domain.Image{}, ErrInvalidImage
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(header, ";base64")
		}
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if mimeType == "" && len(data) > 0 {
		mimeType = http.DetectContentType(data)
	}
	return domain.Image{Data: data, MIMEType: mimeType}, nil
}
