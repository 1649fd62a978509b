package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanweb/internal/ollama"
)

func TestPrepare_MemoriesExtendSystemPrompt(t *testing.T) {
	// Given: one instruction and two learned memories, one untyped
	s := newService(&fakeLLM{}, nil)
	memories := []Memory{
		{Content: "User runs an S7-1200 PLC", Type: MemoryLearned},
		{Content: "Answer in metric units", Type: MemoryInstruction},
		{Content: "Project logs cell temperatures"},
	}

	// When: preparing a thinking turn with them
	req, _, err := s.Prepare(context.Background(), Request{Messages: userTurn("hi"), Memories: memories, Thinking: true})

	// Then: instructions come first, then memories, then the thinking block
	require.NoError(t, err)
	system := req.Messages[0].Content
	want := "\n\nUser Instructions:\n- Answer in metric units\n" +
		"\n\nMemory / Context from past conversations:\n- User runs an S7-1200 PLC\n- Project logs cell temperatures\n" +
		"\nUse these memories naturally in conversation when relevant."
	assert.Contains(t, system, want)
	assert.Less(t, strings.Index(system, want), strings.Index(system, "THINKING MODE"))
}

func TestMemoryPrompt_Empty(t *testing.T) {
	assert.Empty(t, memoryPrompt(nil))
	assert.Equal(t, "\n\nUser Instructions:\n- be brief\n\nUse these memories naturally in conversation when relevant.",
		memoryPrompt([]Memory{{Content: "be brief", Type: MemoryInstruction}}))
}

func TestExtractMemories(t *testing.T) {
	// Given: a model that wraps its array in chatter
	llm := &fakeLLM{reply: `Sure! ["User is an automation engineer", "Project uses Go"] Hope that helps.`}
	s := newService(llm, nil)

	// When: extracting from a conversation
	got, err := s.ExtractMemories(context.Background(), conversation(), "")

	// Then: both facts come back and the prompt holds only the dialogue
	require.NoError(t, err)
	assert.Equal(t, []Memory{{Content: "User is an automation engineer"}, {Content: "Project uses Go"}}, got)
	require.Len(t, llm.generate, 1)
	req := llm.generate[0]
	assert.Equal(t, "llama3.1:8b", req.Model)
	assert.Equal(t, ollama.Options{Temperature: 0.3}, req.Options)
	assert.Contains(t, req.Prompt, "Assistant: Cathodes crack because of anisotropic strain.\nUser: later")
	assert.NotContains(t, req.Prompt, ": sys\n")
}

func TestExtractMemories_EmptyConversationSkipsModel(t *testing.T) {
	llm := &fakeLLM{}
	s := newService(llm, nil)

	got, err := s.ExtractMemories(context.Background(), nil, "")

	require.NoError(t, err)
	assert.Equal(t, []Memory{}, got)
	assert.Empty(t, llm.generate)
}

func TestExtractMemories_ModelFailure(t *testing.T) {
	s := newService(&fakeLLM{err: errors.New("ollama down")}, nil)

	_, err := s.ExtractMemories(context.Background(), userTurn("I use Rust"), "qwen2.5:7b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama down")
}

func TestParseMemories(t *testing.T) {
	long := strings.Repeat("x", 400)
	tests := []struct {
		name  string
		reply string
		want  []Memory
	}{
		{"no array", "nothing to remember", []Memory{}},
		{"invalid json", "[not json]", []Memory{}},
		{"objects and strings", `[{"content":"a"},"b",{"other":1},"",42]`, []Memory{{Content: "a"}, {Content: "b"}}},
		{"capped at five", `["1","2","3","4","5","6"]`, []Memory{{Content: "1"}, {Content: "2"}, {Content: "3"}, {Content: "4"}, {Content: "5"}}},
		{"long fact clipped", `["` + long + `"]`, []Memory{{Content: long[:300]}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseMemories(tt.reply))
		})
	}
}
