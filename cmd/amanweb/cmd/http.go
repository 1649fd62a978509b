package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanweb/internal/httpapi"
	"github.com/Aman-CERP/amanweb/internal/output"
)

func newHTTPCmd(_ *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP API",
		Long: `Serve research and chat over HTTP for browser front ends.

Routes:
  POST /api/search   research a question, JSON in and out
  POST /api/chat     stream a chat turn as server-sent events
  GET  /api/models   list installed models
  POST /api/title    name a conversation
  GET  /healthz      Ollama and SearXNG reachability
  GET  /metrics      Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHTTP(cmd.Context(), cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}

func runHTTP(ctx context.Context, cmd *cobra.Command, addr string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.cfg.Server.HTTPAddr
	}

	srv := httpapi.New(httpapi.Deps{
		Researcher: a.researcher,
		Chat:       a.chatService(),
		Models:     a.llm,
		Checks:     a.healthChecks(),
	})

	output.New(cmd.ErrOrStderr()).Statusf("🌐", "Listening on http://%s", addr)
	return srv.Run(ctx, addr)
}
