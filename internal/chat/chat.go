// Package chat turns a conversation into a streaming Ollama chat call,
// optionally grounded in a web research pass over the last user message.
package chat

import (
	"context"
	"log/slog"
	"time"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/research"
)

// Defaults.
const (
	DefaultAssistantName = "Fath-AI"
	DefaultWebMaxResults = 8
)

// LLM is the part of the Ollama client the chat layer uses.
type LLM interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (string, error)
	ChatStream(ctx context.Context, req ollama.ChatRequest, onChunk func(string) error) error
}

// Researcher runs a research pass.
type Researcher interface {
	Search(ctx context.Context, req research.Request) (*research.Response, error)
}

var (
	_ LLM        = (*ollama.Client)(nil)
	_ Researcher = (*research.Researcher)(nil)
)

// Source is a cited search result, as sent to chat clients.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Domain  string `json:"domain,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

// Metadata precedes the streamed answer when web search ran.
type Metadata struct {
	Sources []Source `json:"sources"`
	Queries []string `json:"queries"`
}

// Empty reports whether there is nothing worth sending.
func (m Metadata) Empty() bool {
	return len(m.Sources) == 0 && len(m.Queries) == 0
}

// Request is one chat turn.
type Request struct {
	Messages  []ollama.Message `json:"messages"`
	Model     string           `json:"model,omitempty"`
	WebSearch bool             `json:"web_search"`
	Thinking  bool             `json:"thinking"`
	Mode      research.Mode    `json:"mode,omitempty"`
	Memories  []Memory         `json:"memories,omitempty"`
}

// Config configures a Service.
type Config struct {
	AssistantName string
	DefaultModel  string
	WebMaxResults int
}

// Service prepares and streams chat turns.
type Service struct {
	llm        LLM
	researcher Researcher
	cfg        Config
	now        func() time.Time
}

// New creates a Service. researcher may be nil, which disables web search.
func New(llm LLM, researcher Researcher, cfg Config) *Service {
	if cfg.AssistantName == "" {
		cfg.AssistantName = DefaultAssistantName
	}
	if cfg.WebMaxResults <= 0 {
		cfg.WebMaxResults = DefaultWebMaxResults
	}
	return &Service{llm: llm, researcher: researcher, cfg: cfg, now: time.Now}
}

// Prepare builds the Ollama request for req and, when web search ran, the
// metadata describing its sources. The caller's messages are not modified.
func (s *Service) Prepare(ctx context.Context, req Request) (ollama.ChatRequest, Metadata, error) {
	if len(req.Messages) == 0 {
		return ollama.ChatRequest{}, Metadata{}, amerrors.ValidationError(amerrors.ErrCodeInvalidInput, "messages must not be empty")
	}
	mode, err := research.ParseMode(string(req.Mode))
	if err != nil {
		return ollama.ChatRequest{}, Metadata{}, err
	}
	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	now := s.now()

	messages := make([]ollama.Message, len(req.Messages))
	copy(messages, req.Messages)

	var found searchOutcome
	last := len(messages) - 1
	web := req.WebSearch && s.researcher != nil && messages[last].Role == ollama.RoleUser
	if web {
		question := messages[last].Content
		found = s.search(ctx, question, model, mode)
		if len(found.Sources) > 0 {
			messages[last].Content = buildRAGPrompt(question, found.context, len(found.Sources), now)
		} else {
			messages[last].Content = buildNoResultsPrompt(question)
		}
	}

	system := systemPrompt(s.cfg.AssistantName, mode, now) + memoryPrompt(req.Memories)
	if req.Thinking {
		system += thinkingInstructions
	}

	return ollama.ChatRequest{
		Model:    model,
		Messages: append([]ollama.Message{{Role: ollama.RoleSystem, Content: system}}, messages...),
		Options:  streamOptions(web, req.Thinking),
	}, found.Metadata, nil
}

// Stream prepares req and streams the answer. onMeta is called once before
// any content when web search produced sources or queries.
func (s *Service) Stream(ctx context.Context, req Request, onMeta func(Metadata) error, onChunk func(string) error) error {
	chatReq, meta, err := s.Prepare(ctx, req)
	if err != nil {
		return err
	}
	if !meta.Empty() && onMeta != nil {
		if err := onMeta(meta); err != nil {
			return err
		}
	}
	slog.Info("chat_stream_start",
		slog.String("model", chatReq.Model),
		slog.Bool("web", req.WebSearch),
		slog.Bool("thinking", req.Thinking),
		slog.Int("sources", len(meta.Sources)))
	return s.llm.ChatStream(ctx, chatReq, onChunk)
}

// searchOutcome carries the formatted context alongside the metadata.
type searchOutcome struct {
	Metadata
	context string
}

// search runs research for the chat turn. Failure yields empty metadata,
// which the caller turns into the no-results note.
func (s *Service) search(ctx context.Context, question, model string, mode research.Mode) searchOutcome {
	resp, err := s.researcher.Search(ctx, research.Request{
		Question:     question,
		Model:        model,
		MaxResults:   s.cfg.WebMaxResults,
		FetchContent: true,
		Mode:         mode,
	})
	if err != nil {
		slog.Warn("chat_web_search_failed", slog.String("error", err.Error()))
		return searchOutcome{}
	}

	out := searchOutcome{context: resp.FormattedContext}
	out.Queries = resp.Queries
	out.Sources = make([]Source, 0, len(resp.Results))
	for _, r := range resp.Results {
		out.Sources = append(out.Sources, Source{Title: r.Title, URL: r.URL, Domain: r.Domain, Favicon: r.Favicon})
	}
	return out
}

// streamOptions picks sampling options for the turn.
func streamOptions(web, thinking bool) ollama.Options {
	opts := ollama.Options{
		Temperature:   0.7,
		TopP:          0.9,
		RepeatPenalty: 1.15,
		NumCtx:        4096,
		NumPredict:    1024,
	}
	switch {
	case thinking:
		opts.Temperature = 0.4
	case web:
		opts.Temperature = 0.3
	}
	if thinking {
		opts.TopP = 0.95
		opts.NumPredict = 2048
	}
	if thinking || web {
		opts.NumCtx = 8192
	}
	return opts
}
