package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanweb/internal/logging"
	"github.com/Aman-CERP/amanweb/internal/mcp"
	"github.com/Aman-CERP/amanweb/internal/research"
	"github.com/Aman-CERP/amanweb/pkg/version"
)

const serveCmdName = "serve"

func newServeCmd(root *rootOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   serveCmdName,
		Short: "Serve the research tools over MCP",
		Long: `Start the Model Context Protocol server on stdio.

Tools:
  web_search  research a question and return ranked sources and context
  fetch_page  extract the text of one page

Resources:
  amanweb://profiles   domain profiles per mode and category
  amanweb://blocklist  domains never returned

stdout carries JSON-RPC frames only. Logs go to ~/.amanweb/logs/amanweb.log.`,
		Example: `  # Claude Desktop / Cursor server entry
  {"command": "amanweb", "args": ["serve"]}`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport: stdio (default from config)")

	return cmd
}

func runServe(ctx context.Context, root *rootOptions, transport string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Server.LogLevel
	if root.debug {
		level = "debug"
	}
	cleanup, err := logging.SetupServerMode(level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	a, err := buildApp(cfg, research.WithProgress(func(p research.Progress) {
		slog.Debug("research_stage", slog.String("stage", p.Stage), slog.String("detail", p.Detail))
	}))
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(a.researcher, a.fetcher, a.registry)
	if err != nil {
		return err
	}

	if transport == "" {
		transport = cfg.Server.Transport
	}
	slog.Info("mcp_server_starting",
		slog.String("transport", transport),
		slog.String("version", version.Version),
		slog.String("searxng", cfg.Search.SearxngURL),
		slog.String("ollama", cfg.Ollama.Host))

	return srv.Serve(ctx, transport)
}
