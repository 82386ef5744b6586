package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptVisionIdentify is the system prompt for identifying an artwork from a photo.
	// The template expects a %s placeholder for the reply language.
	PromptVisionIdentify = "vision_identify"

	// PromptVisionHints is appended to the vision prompt on the fallback call.
	// The template expects a %s placeholder for the rendered hint list.
	PromptVisionHints = "vision_hints"

	// PromptTextExtract is the system prompt for identifying an artwork from scraped text.
	// The template expects %s (language) and %s (rendered hint list) placeholders.
	PromptTextExtract = "text_extract"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
