package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aman-CERP/amanweb/internal/ollama"
)

// Memory kinds. Anything that is not an instruction is treated as a memory.
const (
	MemoryInstruction = "instruction"
	MemoryLearned     = "memory"
)

const (
	maxExtractedMemories = 5
	maxMemoryChars       = 300
)

// Memory is a fact the client keeps about the user and sends back with each
// turn. The service never stores them.
type Memory struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

var jsonArray = regexp.MustCompile(`\[[\s\S]*\]`)

// memoryPrompt renders memories as a system prompt suffix: instructions
// first, then learned context. No memories gives "".
func memoryPrompt(memories []Memory) string {
	var instructions, learned []string
	for _, m := range memories {
		if m.Type == MemoryInstruction {
			instructions = append(instructions, m.Content)
		} else {
			learned = append(learned, m.Content)
		}
	}

	var sb strings.Builder
	if len(instructions) > 0 {
		sb.WriteString("\n\nUser Instructions:\n")
		for _, c := range instructions {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}
	if len(learned) > 0 {
		sb.WriteString("\n\nMemory / Context from past conversations:\n")
		for _, c := range learned {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}
	if sb.Len() > 0 {
		sb.WriteString("\nUse these memories naturally in conversation when relevant.")
	}
	return sb.String()
}

// ExtractMemories asks the model for up to five facts worth remembering
// about the user. An empty conversation gives an empty list without a model
// call; an unparseable reply gives an empty list. Only a failed model call
// is an error.
func (s *Service) ExtractMemories(ctx context.Context, messages []ollama.Message, model string) ([]Memory, error) {
	var lines []string
	for _, m := range messages {
		switch m.Role {
		case ollama.RoleUser:
			lines = append(lines, "User: "+m.Content)
		case ollama.RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		}
	}
	if len(lines) == 0 {
		return []Memory{}, nil
	}
	if model == "" {
		model = s.cfg.DefaultModel
	}

	reply, err := s.llm.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  fmt.Sprintf(memoryExtractPrompt, strings.Join(lines, "\n")),
		Options: ollama.Options{Temperature: 0.3},
	})
	if err != nil {
		return nil, fmt.Errorf("extract memories: %w", err)
	}
	return parseMemories(reply), nil
}

// parseMemories reads the first-to-last bracket span of reply as a JSON
// array of strings or {"content": ...} objects.
func parseMemories(reply string) []Memory {
	out := []Memory{}
	span := jsonArray.FindString(reply)
	if span == "" {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return out
	}

	for _, raw := range items {
		if len(out) == maxExtractedMemories {
			break
		}
		var content string
		if err := json.Unmarshal(raw, &content); err != nil {
			var obj struct {
				Content string `json:"content"`
			}
			if json.Unmarshal(raw, &obj) != nil {
				continue
			}
			content = obj.Content
		}
		if content == "" {
			continue
		}
		out = append(out, Memory{Content: clip(content, maxMemoryChars)})
	}
	return out
}
