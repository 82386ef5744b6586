package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for vision or text LLM calls.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ReverseSearchSettings configures the reverse-image/web-entity search.
type ReverseSearchSettings struct {
	// APIKey authenticates with a Google Cloud API key.
	APIKey string

	// AccessToken authenticates with an OAuth2 bearer token instead of a key.
	AccessToken string

	// Endpoint overrides the Vision API base URL.
	Endpoint string

	// MaxResults caps the web detection results per request.
	MaxResults int

	// RequestsPerSecond is the client-side rate limit.
	RequestsPerSecond float64
}

// IsConfigured returns true if some credential is present.
func (r ReverseSearchSettings) IsConfigured() bool {
	return r.APIKey != "" || r.AccessToken != ""
}

// FallbackPolicy selects what the vision fallback stage evaluates.
type FallbackPolicy string

// Available fallback policies.
const (
	// FallbackRequery calls the vision source again with web hints when hints exist.
	FallbackRequery FallbackPolicy = "requery"

	// FallbackReuse re-evaluates the first vision result against the fallback threshold.
	FallbackReuse FallbackPolicy = "reuse"
)

// IsValid returns true if the policy is recognised.
func (p FallbackPolicy) IsValid() bool {
	return p == FallbackRequery || p == FallbackReuse
}

// PipelineSettings tunes the identification state machine.
type PipelineSettings struct {
	HighConfidenceThreshold float64
	BaseThreshold           float64
	FallbackThreshold       float64
	FallbackPolicy          FallbackPolicy
	MatchThreshold          float64

	FetchLimit      int
	FetchTimeout    time.Duration
	MaxBodyBytes    int64
	TextBudget      int
	MinTextChars    int
	RenderEnabled   bool
	RenderNoSandbox bool
	RenderTimeout   time.Duration
	LLMTimeout      time.Duration
}

// Validate checks threshold ranges and positive limits.
func (p PipelineSettings) Validate() error {
	for name, v := range map[string]float64{
		"high confidence threshold": p.HighConfidenceThreshold,
		"base threshold":            p.BaseThreshold,
		"fallback threshold":        p.FallbackThreshold,
		"match threshold":           p.MatchThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %.2f outside [0,1]", ErrInvalidInput, name, v)
		}
	}
	if p.BaseThreshold > p.HighConfidenceThreshold {
		return fmt.Errorf("%w: base threshold above high confidence threshold", ErrInvalidInput)
	}
	if !p.FallbackPolicy.IsValid() {
		return fmt.Errorf("%w: fallback policy %q", ErrInvalidInput, p.FallbackPolicy)
	}
	if p.FetchLimit <= 0 || p.TextBudget <= 0 {
		return fmt.Errorf("%w: fetch limit and text budget must be positive", ErrInvalidInput)
	}
	return nil
}

// QuotaBackend selects the quota gate implementation.
type QuotaBackend string

// Available quota backends.
const (
	QuotaBackendMemory QuotaBackend = "memory"
	QuotaBackendSQLite QuotaBackend = "sqlite"
	QuotaBackendRedis  QuotaBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b QuotaBackend) IsValid() bool {
	switch b {
	case QuotaBackendMemory, QuotaBackendSQLite, QuotaBackendRedis:
		return true
	default:
		return false
	}
}

// QuotaSettings configures the per-user daily recognition quota.
type QuotaSettings struct {
	Backend    QuotaBackend
	DailyLimit int
	RedisURL   string
}

// AppSettings holds all application settings.
type AppSettings struct {
	VisionLLM     LLMSettings
	TextLLM       LLMSettings
	ReverseSearch ReverseSearchSettings
	Pipeline      PipelineSettings
	Quota         QuotaSettings
	DataDir       string
	ServerAddr    string
}

// DefaultPipelineSettings returns the stock thresholds and resource limits.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		HighConfidenceThreshold: 0.98,
		BaseThreshold:           0.6,
		FallbackThreshold:       0.95,
		FallbackPolicy:          FallbackRequery,
		MatchThreshold:          0.9,
		FetchLimit:              5,
		FetchTimeout:            10 * time.Second,
		MaxBodyBytes:            5 << 20,
		TextBudget:              5000,
		MinTextChars:            100,
		RenderEnabled:           true,
		RenderTimeout:           30 * time.Second,
		LLMTimeout:              30 * time.Second,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers and reverse search are left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		VisionLLM: LLMSettings{},
		TextLLM:   LLMSettings{},
		ReverseSearch: ReverseSearchSettings{
			MaxResults:        20,
			RequestsPerSecond: 5,
		},
		Pipeline: DefaultPipelineSettings(),
		Quota: QuotaSettings{
			Backend:    QuotaBackendSQLite,
			DailyLimit: 50,
		},
		ServerAddr: ":8080",
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultVisionModels returns default image-capable models for each provider.
func DefaultVisionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llava",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultTextModels returns default text models for each provider.
func DefaultTextModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}
