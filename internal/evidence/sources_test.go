package evidence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// fakeLLM records calls and replies with a fixed answer.
type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	delay    time.Duration
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (f *fakeLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	f.mu.Lock()
	f.messages = append(f.messages, messages)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeLLM) ModelName() string            { return "fake" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

type fakePrompts map[string]string

func (p fakePrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}

func (p fakePrompts) Reload() {}

var testImage = domain.Image{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}

func TestVisionSource_Identify(t *testing.T) {
	llm := &fakeLLM{reply: `{"identified": true, "confidence": 0.99, "title": "Mona Lisa"}`}
	src := NewVisionSource(llm, Config{})

	got := src.Identify(context.Background(), testImage, domain.Hints{Language: "it"})

	assert.True(t, got.Identified)
	assert.Equal(t, domain.SourceVision, got.Source)
	require.Len(t, llm.messages, 1)
	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Italian")
	require.Len(t, msgs[1].Images, 1)
	assert.Equal(t, "image/jpeg", msgs[1].Images[0].MIMEType)
	assert.True(t, llm.opts[0].JSONMode)
}

func TestVisionSource_HintsMarkFallback(t *testing.T) {
	llm := &fakeLLM{reply: `{"identified": true, "confidence": 0.96}`}
	src := NewVisionSource(llm, Config{})

	got := src.Identify(context.Background(), testImage, domain.Hints{
		Language:  "en",
		Labels:    []string{"mona lisa"},
		TopEntity: "Lisa del Giocondo",
	})

	assert.Equal(t, domain.SourceVisionFallback, got.Source)
	system := llm.messages[0][0].Content
	assert.Contains(t, system, "Best guess: mona lisa")
	assert.Contains(t, system, "Strongest web entity: Lisa del Giocondo")
}

func TestVisionSource_DegradesToNegative(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
		img  domain.Image
	}{
		{"transport error", &fakeLLM{err: errors.New("connection refused")}, testImage},
		{"garbage reply", &fakeLLM{reply: "the image shows a painting"}, testImage},
		{"empty image", &fakeLLM{reply: `{"identified": true, "confidence": 1}`}, domain.Image{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVisionSource(tt.llm, Config{}).Identify(context.Background(), tt.img, domain.Hints{})
			assert.False(t, got.Identified)
			assert.Zero(t, got.Confidence)
		})
	}
}

func TestVisionSource_TimeoutDegrades(t *testing.T) {
	llm := &fakeLLM{reply: `{"identified": true, "confidence": 1}`, delay: time.Second}
	src := NewVisionSource(llm, Config{Timeout: 20 * time.Millisecond})

	got := src.Identify(context.Background(), testImage, domain.Hints{})

	assert.False(t, got.Identified)
}

func TestVisionSource_NilLLM(t *testing.T) {
	got := NewVisionSource(nil, Config{}).Identify(context.Background(), testImage, domain.Hints{})
	assert.False(t, got.Identified)
}

func TestVisionSource_UsesPromptStore(t *testing.T) {
	llm := &fakeLLM{reply: `{"identified": false}`}
	src := NewVisionSource(llm, Config{})
	src.SetPromptStore(fakePrompts{driven.PromptVisionIdentify: "CUSTOM %s"})

	src.Identify(context.Background(), testImage, domain.Hints{Language: "fr"})

	assert.Equal(t, "CUSTOM French", llm.messages[0][0].Content)
}

func TestTextSource_Extract(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"identified\": true, \"confidence\": 0.75, \"title\": \"The Night Watch\"}\n```"}
	src := NewTextSource(llm, Config{})

	got := src.Extract(context.Background(), "Rijksmuseum page text", domain.Hints{
		Language:  "en",
		TopEntity: "The Night Watch",
	})

	assert.True(t, got.Identified)
	assert.Equal(t, domain.SourceText, got.Source)
	assert.Equal(t, "The Night Watch", got.Title)
	msgs := llm.messages[0]
	assert.Contains(t, msgs[0].Content, "Strongest web entity: The Night Watch")
	assert.True(t, strings.HasSuffix(msgs[1].Content, "Rijksmuseum page text"))
	assert.Empty(t, msgs[1].Images)
}

func TestTextSource_EmptyTextSkipsCall(t *testing.T) {
	llm := &fakeLLM{reply: `{"identified": true, "confidence": 1}`}

	got := NewTextSource(llm, Config{}).Extract(context.Background(), "", domain.Hints{})

	assert.False(t, got.Identified)
	assert.Empty(t, llm.messages)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName(""))
	assert.Equal(t, "Italian", LanguageName("IT"))
	assert.Equal(t, "sv", LanguageName("sv"))
}

func TestRenderHints_Empty(t *testing.T) {
	assert.Equal(t, "- none", renderHints(domain.Hints{}))
}
