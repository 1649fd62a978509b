package research

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/amanweb/internal/ollama"
)

const (
	summarizeMinChars      = 100
	summarizeInputChars    = 2500
	summarizeFallbackChars = 300
)

// Summarizer condenses fetched page text into a few bullet points.
type Summarizer struct {
	gen Generator
}

// NewSummarizer creates a summarizer.
func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Summarize returns a 4-6 bullet summary of content focused on question.
// Content under 100 characters is returned unchanged; on failure the first
// 300 characters are returned.
func (s *Summarizer) Summarize(ctx context.Context, content, question, model string) string {
	if utf8.RuneCountInString(content) < summarizeMinChars || s.gen == nil {
		return content
	}
	reply, err := s.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  buildSummarizePrompt(question, content),
		Options: ollama.Options{Temperature: 0.2, NumPredict: 300, NumCtx: 4096},
	})
	if summary := strings.TrimSpace(reply); err == nil && summary != "" {
		return summary
	}
	return truncateRunes(content, summarizeFallbackChars)
}
