package mcp

import (
	"github.com/custodia-labs/artid/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Recognition runs the full recognize boundary.
	Recognition driving.RecognitionService

	// Catalog answers lookups against curated entries.
	Catalog driving.CatalogService

	// Collection reads saved recognitions.
	Collection driving.CollectionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Recognition == nil {
		return ErrMissingRecognitionService
	}
	// Catalog and Collection are optional
	return nil
}
