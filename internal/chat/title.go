package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/amanweb/internal/ollama"
)

// DefaultTitle is used whenever no title can be generated.
const DefaultTitle = "New Chat"

const (
	titleExcerptChars = 500
	titleMaxChars     = 50
)

// Title returns a 3-5 word title for a conversation. Conversations with
// fewer than two messages and any model failure get DefaultTitle.
func (s *Service) Title(ctx context.Context, messages []ollama.Message, model string) string {
	if len(messages) < 2 {
		return DefaultTitle
	}
	if model == "" {
		model = s.cfg.DefaultModel
	}

	user := firstContent(messages, ollama.RoleUser)
	assistant := firstContent(messages, ollama.RoleAssistant)
	reply, err := s.llm.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  fmt.Sprintf(titlePrompt, clip(user, titleExcerptChars), clip(assistant, titleExcerptChars)),
		Options: ollama.Options{Temperature: 0.3, NumPredict: 20},
	})
	if err != nil {
		slog.Warn("title_generation_failed", slog.String("error", err.Error()))
		return DefaultTitle
	}
	return parseTitle(reply)
}

// parseTitle strips one leading and one trailing quote, a trailing period,
// and caps the result at 50 characters.
func parseTitle(reply string) string {
	t := strings.TrimSpace(reply)
	if strings.HasPrefix(t, `"`) || strings.HasPrefix(t, "'") {
		t = t[1:]
	}
	if strings.HasSuffix(t, `"`) || strings.HasSuffix(t, "'") {
		t = t[:len(t)-1]
	}
	t = strings.TrimSuffix(t, ".")
	t = clip(t, titleMaxChars)
	if strings.TrimSpace(t) == "" {
		return DefaultTitle
	}
	return t
}

func firstContent(messages []ollama.Message, role string) string {
	for _, m := range messages {
		if m.Role == role {
			return m.Content
		}
	}
	return ""
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
