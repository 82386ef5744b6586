// Package domain defines the core business entities for artid.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EvidenceResult: A structured identification claim from one source
//   - WebEvidence: Pages, labels and entities from a reverse-image search
//   - CatalogEntry: A curated, known artwork or monument
//   - CollectionItem: A user's saved recognition, linked or custom
//   - Outcome: The terminal value of one identification run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
