// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/artid/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/artid/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/artid/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the LLM services backing the two evidence sources.
type InitResult struct {
	VisionLLM driven.LLMService
	TextLLM   driven.LLMService
	Warnings  []string // Non-fatal issues, e.g. text LLM unreachable.

	// SharedText is true when the text source reuses the vision LLM.
	SharedText bool
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.VisionLLM != nil {
		r.VisionLLM.Close()
	}
	if r.TextLLM != nil && !r.SharedText {
		r.TextLLM.Close()
	}
}

// InitServices creates the vision and text LLM services.
// The vision LLM is required. An unconfigured or failing text LLM falls back
// to the vision LLM, recording a warning when it was configured but failed.
func InitServices(settings *domain.AppSettings, validate bool) (*InitResult, error) {
	create := CreateLLMService
	if validate {
		create = CreateAndValidateLLMService
	}

	vision, err := create(&settings.VisionLLM)
	if err != nil {
		return nil, err
	}
	if vision == nil {
		return nil, fmt.Errorf("%w: vision LLM provider is not configured. Run 'artid settings llm' to fix",
			domain.ErrLLMUnavailable)
	}

	result := &InitResult{VisionLLM: vision}

	text, err := create(&settings.TextLLM)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("text LLM unavailable, using vision LLM: %v", err))
	}
	if text == nil {
		result.TextLLM = vision
		result.SharedText = true
		return result, nil
	}
	result.TextLLM = text
	return result, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'artid settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'artid settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use by the settings commands to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
