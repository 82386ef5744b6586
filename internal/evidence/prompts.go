package evidence

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

const replyFormat = `Reply with a single JSON object and nothing else, using these keys:
identified (boolean), confidence (number between 0 and 1), title, artist, year,
period, technique, dimensions, description, tags (array of strings),
isMonument (boolean), country (only when isMonument is true).
If you cannot tell what the subject is, reply {"identified": false, "confidence": 0}.`

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptVisionIdentify: `You are an expert art historian and cultural heritage specialist.
Identify the artwork or monument shown in the user's photograph.
Be conservative with confidence: use values above 0.95 only when the work is unmistakable.
Write all text fields in %s.
` + replyFormat,

	driven.PromptVisionHints: `A reverse image search returned these clues about the same photograph.
Use them only where they agree with what you can see:
%s`,

	driven.PromptTextExtract: `You are an expert art historian. The user message contains text scraped from
web pages that show the same photograph as the user. Decide which single artwork
or monument those pages are about. Write all text fields in %s.

Clues from the reverse image search:
%s

` + replyFormat,
}

// DefaultPrompts returns the embedded prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	return defaultPrompts[name]
}

var languageNames = map[string]string{
	"en": "English",
	"it": "Italian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ja": "Japanese",
	"zh": "Chinese",
}

// LanguageName maps an ISO 639-1 code to the English language name used in prompts.
// Unknown codes pass through unchanged; an empty code means English.
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "English"
	}
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

const maxHintTitles = 5

// renderHints formats hints as a bullet list for prompt templates.
func renderHints(h domain.Hints) string {
	var b strings.Builder
	if len(h.Labels) > 0 {
		fmt.Fprintf(&b, "- Best guess: %s\n", strings.Join(h.Labels, "; "))
	}
	if h.TopEntity != "" {
		fmt.Fprintf(&b, "- Strongest web entity: %s\n", h.TopEntity)
	}
	titles := h.PageTitles
	if len(titles) > maxHintTitles {
		titles = titles[:maxHintTitles]
	}
	for _, t := range titles {
		fmt.Fprintf(&b, "- Page title: %s\n", t)
	}
	if b.Len() == 0 {
		return "- none"
	}
	return strings.TrimRight(b.String(), "\n")
}
