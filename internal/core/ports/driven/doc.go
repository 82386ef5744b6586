// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VisionSource: Identifies artworks directly from image bytes
//   - CatalogStore: Curated catalog lookup
//   - CollectionStore: User collection persistence
//   - QuotaGate: Per-user recognition quota
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - ReverseImageSearcher: Web pages, labels and entities for an image.
//     Without it, only the vision stages run.
//   - TextSource: Extracts identification from scraped text.
//     Without it, the text-analysis stage is skipped.
//   - PageRenderer: Headless browser for script-heavy pages.
//     Without it, low-yield fetches are not retried.
//   - PromptStore: User-editable prompts. Without it, embedded defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
