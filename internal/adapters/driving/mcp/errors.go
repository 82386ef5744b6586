// Package mcp provides an MCP (Model Context Protocol) server adapter for artid.
// It lets AI assistants recognize artworks and query the curated catalog.
package mcp

import "errors"

// ErrMissingRecognitionService is returned when the recognition service is not provided.
var ErrMissingRecognitionService = errors.New("mcp: recognition service is required")

// ErrInvalidImage is returned when the tool input does not carry a decodable image.
var ErrInvalidImage = errors.New("mcp: image could not be read")
