package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanweb/internal/chat"
	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/output"
	"github.com/Aman-CERP/amanweb/internal/research"
)

type askOptions struct {
	web      bool
	thinking bool
	mode     string
	model    string
}

func newAskCmd(root *rootOptions) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the local model, optionally grounded in web research",
		Long: `Ask the configured Ollama model a question and stream the answer.

With --web the question is researched first and the assembled context is
handed to the model together with the question; the cited sources are
listed after the answer. --think asks for step-by-step reasoning.`,
		Example: `  amanweb ask "what limits fast charging in LFP cells?" --web
  amanweb ask "explain Rust pinning" --mode code --think`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Research the question on the web first")
	cmd.Flags().BoolVar(&opts.thinking, "think", false, "Ask for step-by-step reasoning")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Persona and search mode: auto, scientific, industrial, code, general")
	cmd.Flags().StringVar(&opts.model, "model", "", "Ollama model to chat with")

	return cmd
}

func runAsk(ctx context.Context, cmd *cobra.Command, question string, opts askOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	mode, err := research.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	if !a.llm.Available(ctx) {
		return amerrors.LLMError("Ollama is not reachable at "+a.llm.Host(), nil)
	}

	req := chat.Request{
		Messages:  []ollama.Message{{Role: ollama.RoleUser, Content: question}},
		Model:     opts.model,
		WebSearch: opts.web,
		Thinking:  opts.thinking,
		Mode:      mode,
	}

	out := output.New(cmd.OutOrStdout())
	status := output.New(cmd.ErrOrStderr())
	if opts.web {
		status.Status("🔍", "Researching...")
	}

	var meta chat.Metadata
	onMeta := func(m chat.Metadata) error {
		meta = m
		if len(m.Queries) > 0 {
			status.Statusf("📄", "%d sources from %d queries", len(m.Sources), len(m.Queries))
		}
		return nil
	}

	slog.Info("ask_started", slog.Bool("web_search", opts.web), slog.Bool("thinking", opts.thinking))
	if err := a.chatService().Stream(ctx, req, onMeta, out.Chunk); err != nil {
		return err
	}
	out.Newline()

	if len(meta.Sources) > 0 {
		sources := make([]string, len(meta.Sources))
		for i, s := range meta.Sources {
			sources[i] = fmt.Sprintf("%s <%s>", s.Title, s.URL)
		}
		out.Newline()
		out.List("Sources:", sources)
	}
	slog.Info("ask_complete", slog.Int("sources", len(meta.Sources)))
	return nil
}
