package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/services"
)

func newSettingsService(t *testing.T) (*services.SettingsService, *memory.ConfigStore) {
	t.Helper()
	store := memory.NewConfigStore()
	svc := services.NewSettingsService(store, nil)
	svc.SetEnvLookup(func(string) string { return "" })
	return svc, store
}

func TestParseChoice_ProviderMenu(t *testing.T) {
	providers := domain.AllLLMProviders()
	n := len(providers)

	tests := []struct {
		input string
		want  domain.AIProvider
	}{
		{"", providers[0]},
		{"1", domain.AIProviderOllama},
		{"2", domain.AIProviderOpenAI},
		{"3", domain.AIProviderAnthropic},
		{"0", providers[0]},
		{"4", providers[0]},
		{"anthropic", providers[0]},
		{"-2", providers[0]},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			idx := parseChoice(tt.input, n, 1)
			assert.Equal(t, tt.want, providers[idx-1])
		})
	}
}

func TestReadLine_TrimsPromptInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  llava:13b \r\nsecond\n"))

	assert.Equal(t, "llava:13b", readLine(reader))
	assert.Equal(t, "second", readLine(reader))
	assert.Empty(t, readLine(reader))
}

func TestSettingsShow_MasksStoredKeys(t *testing.T) {
	fake := &fakeSettings{settings: domain.DefaultAppSettings()}
	fake.settings.VisionLLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-vision",
		APIKey:   "sk-ant-REDACTED",
	}
	fake.settings.TextLLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "short",
	}
	settingsService = fake

	out, err := runCLI(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-a...9876")
	assert.Contains(t, out, "API Key: ****")
	assert.NotContains(t, out, "secretvalue")
	assert.NotContains(t, out, "short")
}

func TestSettingsThresholds_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"high above one", []string{"--high", "1.5"}},
		{"negative match", []string{"--match", "-0.1"}},
		{"base above high", []string{"--high", "0.7", "--base", "0.8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSettingsService(t)
			settingsService = svc

			_, err := runCLI(t, "", append([]string{"settings", "thresholds"}, tt.args...)...)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, written := store.Get("pipeline.high_confidence_threshold")
			assert.False(t, written, "rejected thresholds are not saved")
		})
	}
}

func TestSettingsThresholds_PersistsThroughService(t *testing.T) {
	svc, store := newSettingsService(t)
	settingsService = svc

	out, err := runCLI(t, "", "settings", "thresholds", "--fallback", "0.9", "--match", "0.8")

	require.NoError(t, err)
	assert.Contains(t, out, "fallback 0.90, match 0.80")
	assert.InDelta(t, 0.9, store.GetFloat("pipeline.fallback_threshold"), 1e-9)
	assert.InDelta(t, 0.8, store.GetFloat("pipeline.match_threshold"), 1e-9)
	assert.InDelta(t, 0.98, store.GetFloat("pipeline.high_confidence_threshold"), 1e-9)
}

func TestSettingsLLM_SavesLocalProviderThroughService(t *testing.T) {
	svc, _ := newSettingsService(t)
	settingsService = svc

	// Provider 1 (Ollama) with the default model validates without a key.
	_, err := runCLI(t, "1\n\n", "settings", "llm", "--role", "vision")
	require.NoError(t, err)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.VisionLLM.Provider)
	assert.Equal(t, domain.DefaultVisionModels()[domain.AIProviderOllama], settings.VisionLLM.Model)
}
