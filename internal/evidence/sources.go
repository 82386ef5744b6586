package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure the sources implement their ports.
var (
	_ driven.VisionSource     = (*VisionSource)(nil)
	_ driven.TextSource       = (*TextSource)(nil)
	_ driven.PromptStoreAware = (*VisionSource)(nil)
	_ driven.PromptStoreAware = (*TextSource)(nil)
)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxTokens = 1024

	temperature = 0.1
)

// Config holds per-call limits for an LLM-backed source.
type Config struct {
	// Timeout bounds each model call (default: 30s).
	Timeout time.Duration

	// MaxTokens caps the reply length (default: 1024).
	MaxTokens int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// VisionSource identifies artworks by sending the photograph to a vision-capable LLM.
// When hints are supplied the call is tagged as the vision fallback.
type VisionSource struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     Config
}

// NewVisionSource creates a vision source. A nil llm yields a source
// that always reports negative evidence.
func NewVisionSource(llm driven.LLMService, cfg Config) *VisionSource {
	return &VisionSource{llm: llm, cfg: cfg.withDefaults()}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *VisionSource) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Identify asks the model what the image shows.
func (s *VisionSource) Identify(ctx context.Context, image domain.Image, hints domain.Hints) domain.EvidenceResult {
	source := domain.SourceVision
	if !hints.IsEmpty() {
		source = domain.SourceVisionFallback
	}
	if s.llm == nil {
		return domain.NegativeEvidence(source)
	}
	if len(image.Data) == 0 {
		logger.Warn("vision: empty image, skipping model call")
		return domain.NegativeEvidence(source)
	}

	system := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptVisionIdentify), LanguageName(hints.Language))
	if !hints.IsEmpty() {
		system += "\n\n" + fmt.Sprintf(loadPrompt(s.prompts, driven.PromptVisionHints), renderHints(hints))
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{
			Role:    "user",
			Content: "Identify the artwork or monument in this photograph.",
			Images:  []driven.ImagePart{{Data: image.Data, MIMEType: image.MIMEType}},
		},
	}
	return chatForEvidence(ctx, s.llm, s.cfg, messages, source)
}

// TextSource extracts an identification from scraped page text with a text LLM.
type TextSource struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     Config
}

// NewTextSource creates a text source. A nil llm yields a source
// that always reports negative evidence.
func NewTextSource(llm driven.LLMService, cfg Config) *TextSource {
	return &TextSource{llm: llm, cfg: cfg.withDefaults()}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *TextSource) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Extract asks the model which artwork the scraped text describes.
func (s *TextSource) Extract(ctx context.Context, text string, hints domain.Hints) domain.EvidenceResult {
	if s.llm == nil || text == "" {
		return domain.NegativeEvidence(domain.SourceText)
	}

	system := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptTextExtract), LanguageName(hints.Language), renderHints(hints))
	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Scraped web content:\n\n" + text},
	}
	return chatForEvidence(ctx, s.llm, s.cfg, messages, domain.SourceText)
}

// chatForEvidence runs one bounded model call and parses the reply.
// Every failure is logged and collapses to negative evidence.
func chatForEvidence(
	ctx context.Context,
	llm driven.LLMService,
	cfg Config,
	messages []driven.ChatMessage,
	source domain.EvidenceSource,
) domain.EvidenceResult {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   cfg.MaxTokens,
		Temperature: temperature,
		JSONMode:    true,
	})
	if err != nil {
		logger.Warn("%s source: model %s call failed: %v", source, llm.ModelName(), err)
		return domain.NegativeEvidence(source)
	}

	parsed := ParseReply(reply)
	if !parsed.Ok {
		logger.Warn("%s source: %v", source, parsed.Err)
		return domain.NegativeEvidence(source)
	}

	result := parsed.Result
	result.Source = source
	logger.Debug("%s source: identified=%t confidence=%.2f title=%q (%v)",
		source, result.Identified, result.Confidence, result.Title, time.Since(start).Round(time.Millisecond))
	return result
}
