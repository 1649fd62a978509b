package ollama

import "time"

// Defaults for the Ollama client.
const (
	DefaultHost    = "http://localhost:11434"
	DefaultModel   = "llama3.1:8b"
	DefaultTimeout = 30 * time.Second

	// maxStreamLine bounds a single NDJSON line from /api/chat.
	maxStreamLine = 1 << 20
)

// Options are the model sampling options AmanWeb sets.
// Zero values are omitted so the server default applies.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

// GenerateRequest is a non-streaming completion request.
type GenerateRequest struct {
	// Model overrides the client default when set.
	Model   string
	Prompt  string
	Options Options
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is a streaming chat request.
type ChatRequest struct {
	Model    string
	Messages []Message
	Options  Options
}

// Model describes a locally installed model.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Wire types.

type generateBody struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type chatBody struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

type chatChunk struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}
