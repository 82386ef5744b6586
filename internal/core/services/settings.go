package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyVisionProvider = "vision_llm.provider"
	keyVisionModel    = "vision_llm.model"
	keyVisionBaseURL  = "vision_llm.base_url"
	keyVisionAPIKey   = "vision_llm.api_key"
	keyTextProvider   = "text_llm.provider"
	keyTextModel      = "text_llm.model"
	keyTextBaseURL    = "text_llm.base_url"
	keyTextAPIKey     = "text_llm.api_key"

	keySearchAPIKey      = "reverse_search.api_key"
	keySearchToken       = "reverse_search.access_token"
	keySearchEndpoint    = "reverse_search.endpoint"
	keySearchMaxResults  = "reverse_search.max_results"
	keySearchRatePerSec  = "reverse_search.requests_per_second"
	keyHighThreshold     = "pipeline.high_confidence_threshold"
	keyBaseThreshold     = "pipeline.base_threshold"
	keyFallbackThreshold = "pipeline.fallback_threshold"
	keyFallbackPolicy    = "pipeline.fallback_policy"
	keyMatchThreshold    = "pipeline.match_threshold"
	keyFetchLimit        = "pipeline.fetch_limit"
	keyFetchTimeout      = "pipeline.fetch_timeout_seconds"
	keyMaxBodyBytes      = "pipeline.max_body_bytes"
	keyTextBudget        = "pipeline.text_budget"
	keyMinTextChars      = "pipeline.min_text_chars"
	keyRenderEnabled     = "pipeline.render_enabled"
	keyRenderNoSandbox   = "pipeline.render_no_sandbox"
	keyRenderTimeout     = "pipeline.render_timeout_seconds"
	keyLLMTimeout        = "pipeline.llm_timeout_seconds"

	keyQuotaBackend = "quota.backend"
	keyQuotaLimit   = "quota.daily_limit"
	keyQuotaRedis   = "quota.redis_url"
	keyDataDir      = "storage.data_dir"
	keyServerAddr   = "server.addr"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvVisionAPIKey        = "ARTID_VISION_API_KEY"
	EnvLLMAPIKey           = "ARTID_LLM_API_KEY"
	EnvReverseSearchAPIKey = "ARTID_REVERSE_SEARCH_API_KEY"
	EnvChromeNoSandbox     = "ARTID_CHROME_NO_SANDBOX"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Useful for testing.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings, applying environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	dp := defaults.Pipeline

	settings := &domain.AppSettings{
		VisionLLM: s.getLLM(keyVisionProvider, keyVisionModel, keyVisionBaseURL, keyVisionAPIKey),
		TextLLM:   s.getLLM(keyTextProvider, keyTextModel, keyTextBaseURL, keyTextAPIKey),
		ReverseSearch: domain.ReverseSearchSettings{
			APIKey:            s.configStore.GetString(keySearchAPIKey),
			AccessToken:       s.configStore.GetString(keySearchToken),
			Endpoint:          s.configStore.GetString(keySearchEndpoint),
			MaxResults:        s.getInt(keySearchMaxResults, defaults.ReverseSearch.MaxResults),
			RequestsPerSecond: s.getFloat(keySearchRatePerSec, defaults.ReverseSearch.RequestsPerSecond),
		},
		Pipeline: domain.PipelineSettings{
			HighConfidenceThreshold: s.getFloat(keyHighThreshold, dp.HighConfidenceThreshold),
			BaseThreshold:           s.getFloat(keyBaseThreshold, dp.BaseThreshold),
			FallbackThreshold:       s.getFloat(keyFallbackThreshold, dp.FallbackThreshold),
			FallbackPolicy:          s.getFallbackPolicy(dp.FallbackPolicy),
			MatchThreshold:          s.getFloat(keyMatchThreshold, dp.MatchThreshold),
			FetchLimit:              s.getInt(keyFetchLimit, dp.FetchLimit),
			FetchTimeout:            s.getSeconds(keyFetchTimeout, dp.FetchTimeout),
			MaxBodyBytes:            int64(s.getInt(keyMaxBodyBytes, int(dp.MaxBodyBytes))),
			TextBudget:              s.getInt(keyTextBudget, dp.TextBudget),
			MinTextChars:            s.getInt(keyMinTextChars, dp.MinTextChars),
			RenderEnabled:           s.getBool(keyRenderEnabled, dp.RenderEnabled),
			RenderNoSandbox:         s.getBool(keyRenderNoSandbox, dp.RenderNoSandbox),
			RenderTimeout:           s.getSeconds(keyRenderTimeout, dp.RenderTimeout),
			LLMTimeout:              s.getSeconds(keyLLMTimeout, dp.LLMTimeout),
		},
		Quota: domain.QuotaSettings{
			Backend:    s.getQuotaBackend(defaults.Quota.Backend),
			DailyLimit: s.getInt(keyQuotaLimit, defaults.Quota.DailyLimit),
			RedisURL:   s.configStore.GetString(keyQuotaRedis),
		},
		DataDir:    s.configStore.GetString(keyDataDir),
		ServerAddr: s.getString(keyServerAddr, defaults.ServerAddr),
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overrides API keys and the Chrome sandbox switch from the environment.
// ARTID_LLM_API_KEY covers both LLM roles unless the vision key is set separately.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if s.getenv == nil {
		return
	}
	if key := s.getenv(EnvLLMAPIKey); key != "" {
		settings.TextLLM.APIKey = key
		settings.VisionLLM.APIKey = key
	}
	if key := s.getenv(EnvVisionAPIKey); key != "" {
		settings.VisionLLM.APIKey = key
	}
	if key := s.getenv(EnvReverseSearchAPIKey); key != "" {
		settings.ReverseSearch.APIKey = key
	}
	if v := s.getenv(EnvChromeNoSandbox); v != "" {
		noSandbox, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("ignoring %s=%q: not a boolean", EnvChromeNoSandbox, v)
		} else {
			settings.Pipeline.RenderNoSandbox = noSandbox
		}
	}
}

// Save persists application settings.
// API keys that came from the environment are not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.saveLLM(settings.VisionLLM, keyVisionProvider, keyVisionModel, keyVisionBaseURL, keyVisionAPIKey,
		EnvVisionAPIKey, EnvLLMAPIKey); err != nil {
		return err
	}
	if err := s.saveLLM(settings.TextLLM, keyTextProvider, keyTextModel, keyTextBaseURL, keyTextAPIKey,
		EnvLLMAPIKey); err != nil {
		return err
	}

	rs := settings.ReverseSearch
	p := settings.Pipeline
	values := []struct {
		key   string
		value any
	}{
		{keySearchEndpoint, rs.Endpoint},
		{keySearchMaxResults, rs.MaxResults},
		{keySearchRatePerSec, rs.RequestsPerSecond},
		{keyHighThreshold, p.HighConfidenceThreshold},
		{keyBaseThreshold, p.BaseThreshold},
		{keyFallbackThreshold, p.FallbackThreshold},
		{keyFallbackPolicy, string(p.FallbackPolicy)},
		{keyMatchThreshold, p.MatchThreshold},
		{keyFetchLimit, p.FetchLimit},
		{keyFetchTimeout, int(p.FetchTimeout / time.Second)},
		{keyMaxBodyBytes, int(p.MaxBodyBytes)},
		{keyTextBudget, p.TextBudget},
		{keyMinTextChars, p.MinTextChars},
		{keyRenderEnabled, p.RenderEnabled},
		{keyRenderTimeout, int(p.RenderTimeout / time.Second)},
		{keyLLMTimeout, int(p.LLMTimeout / time.Second)},
		{keyQuotaBackend, string(settings.Quota.Backend)},
		{keyQuotaLimit, settings.Quota.DailyLimit},
		{keyQuotaRedis, settings.Quota.RedisURL},
		{keyDataDir, settings.DataDir},
		{keyServerAddr, settings.ServerAddr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if s.getenv == nil || s.getenv(EnvChromeNoSandbox) == "" {
		if err := s.configStore.Set(keyRenderNoSandbox, p.RenderNoSandbox); err != nil {
			return fmt.Errorf("save %s: %w", keyRenderNoSandbox, err)
		}
	}

	if rs.APIKey != "" && !s.fromEnv(rs.APIKey, EnvReverseSearchAPIKey) {
		if err := s.configStore.Set(keySearchAPIKey, rs.APIKey); err != nil {
			return fmt.Errorf("save reverse_search api_key: %w", err)
		}
	}
	if rs.AccessToken != "" {
		if err := s.configStore.Set(keySearchToken, rs.AccessToken); err != nil {
			return fmt.Errorf("save reverse_search access_token: %w", err)
		}
	}

	return nil
}

func (s *SettingsService) saveLLM(l domain.LLMSettings, providerKey, modelKey, baseURLKey, apiKeyKey string, envs ...string) error {
	if err := s.configStore.Set(providerKey, l.Provider.String()); err != nil {
		return fmt.Errorf("save %s: %w", providerKey, err)
	}
	if err := s.configStore.Set(modelKey, l.Model); err != nil {
		return fmt.Errorf("save %s: %w", modelKey, err)
	}
	if err := s.configStore.Set(baseURLKey, l.BaseURL); err != nil {
		return fmt.Errorf("save %s: %w", baseURLKey, err)
	}
	if l.APIKey != "" && !s.fromEnv(l.APIKey, envs...) {
		if err := s.configStore.Set(apiKeyKey, l.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", apiKeyKey, err)
		}
	}
	return nil
}

func (s *SettingsService) fromEnv(value string, envs ...string) bool {
	if s.getenv == nil {
		return false
	}
	for _, e := range envs {
		if s.getenv(e) == value {
			return true
		}
	}
	return false
}

// SetLLMProvider configures the vision or text LLM provider.
func (s *SettingsService) SetLLMProvider(role driving.LLMRole, provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	var target *domain.LLMSettings
	var defaults map[domain.AIProvider]string
	switch role {
	case driving.LLMRoleVision:
		target, defaults = &settings.VisionLLM, domain.DefaultVisionModels()
	case driving.LLMRoleText:
		target, defaults = &settings.TextLLM, domain.DefaultTextModels()
	default:
		return fmt.Errorf("%w: unknown LLM role %q", domain.ErrInvalidInput, role)
	}

	target.Provider = provider

	// Set model - use provided or default
	if model != "" {
		target.Model = model
	} else if defaultModel, ok := defaults[provider]; ok {
		target.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers use their default.
	if provider.IsLocal() {
		if target.BaseURL == "" {
			target.BaseURL = defaultOllamaURL
		}
	} else {
		target.BaseURL = ""
	}

	target.APIKey = apiKey

	return s.Save(settings)
}

// SetReverseSearch configures reverse-image search credentials.
func (s *SettingsService) SetReverseSearch(apiKey, accessToken string) error {
	if apiKey == "" && accessToken == "" {
		return fmt.Errorf("%w: an API key or access token is required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.ReverseSearch.APIKey = apiKey
	settings.ReverseSearch.AccessToken = accessToken
	return s.Save(settings)
}

// SetThresholds updates the pipeline confidence thresholds.
func (s *SettingsService) SetThresholds(high, base, fallback, match float64) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	p := settings.Pipeline
	p.HighConfidenceThreshold = high
	p.BaseThreshold = base
	p.FallbackThreshold = fallback
	p.MatchThreshold = match
	if err := p.Validate(); err != nil {
		return err
	}

	settings.Pipeline = p
	return s.Save(settings)
}

// Validate checks that the vision LLM is configured and thresholds are sane.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.VisionLLM.IsConfigured() {
		return fmt.Errorf("%w: vision LLM provider is not configured", domain.ErrLLMUnavailable)
	}
	if err := settings.Pipeline.Validate(); err != nil {
		return err
	}
	if !settings.Quota.Backend.IsValid() {
		return fmt.Errorf("%w: quota backend %q", domain.ErrUnsupportedType, settings.Quota.Backend)
	}
	if settings.Quota.Backend == domain.QuotaBackendRedis && settings.Quota.RedisURL == "" {
		return fmt.Errorf("%w: redis quota backend requires quota.redis_url", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates an LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(role driving.LLMRole) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if role == driving.LLMRoleText {
		return s.aiValidator.ValidateLLM(&settings.TextLLM)
	}
	return s.aiValidator.ValidateLLM(&settings.VisionLLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getLLM(providerKey, modelKey, baseURLKey, apiKeyKey string) domain.LLMSettings {
	return domain.LLMSettings{
		Provider: s.getProvider(providerKey, ""),
		Model:    s.configStore.GetString(modelKey),
		BaseURL:  s.configStore.GetString(baseURLKey), // No default - empty is valid for cloud providers
		APIKey:   s.configStore.GetString(apiKeyKey),
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getFallbackPolicy(defaultVal domain.FallbackPolicy) domain.FallbackPolicy {
	policy := domain.FallbackPolicy(s.configStore.GetString(keyFallbackPolicy))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getQuotaBackend(defaultVal domain.QuotaBackend) domain.QuotaBackend {
	backend := domain.QuotaBackend(s.configStore.GetString(keyQuotaBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
