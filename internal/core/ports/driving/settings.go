package driving

import "github.com/custodia-labs/artid/internal/core/domain"

// LLMRole selects which of the two LLM configurations is addressed.
type LLMRole string

// LLM roles.
const (
	LLMRoleVision LLMRole = "vision"
	LLMRoleText   LLMRole = "text"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the vision or text LLM provider.
	SetLLMProvider(role LLMRole, provider domain.AIProvider, model, apiKey string) error

	// SetReverseSearch configures reverse-image search credentials.
	SetReverseSearch(apiKey, accessToken string) error

	// SetThresholds updates the pipeline confidence thresholds.
	SetThresholds(high, base, fallback, match float64) error

	// Validate checks that the vision LLM is configured and thresholds are sane.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates an LLM configuration by pinging the provider.
	ValidateLLMConfig(role LLMRole) error
}
