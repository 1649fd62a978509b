package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/output"
	"github.com/Aman-CERP/amanweb/internal/research"
	"github.com/Aman-CERP/amanweb/internal/ui"
)

// Output formats accepted by search.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatContext = "context"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	mode       string
	maxResults int
	noFetch    bool
	model      string
	format     string
	plain      bool
	quiet      bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Research a question on the web",
		Long: `Research a question through SearXNG and print the ranked sources.

The question is classified into a domain profile, expanded into search
queries, searched with engine fallbacks, ranked, and the best pages are
fetched. Progress is shown on stderr; results go to stdout.

Modes:
  auto        classify, search, evaluate gaps and search again (default)
  scientific  academic sources first
  industrial  vendor and standards sources first
  code        developer documentation and repositories first
  general     single fast search with no model calls

Formats:
  text     ranked sources for reading (default)
  json     the full research response
  context  only the context block handed to a local model`,
		Example: `  amanweb search "NMC811 calendering density"
  amanweb search "tokio select cancel safety" --mode code
  amanweb search "PLC cycle time" --format context --no-fetch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, root, question, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Search mode: auto, scientific, industrial, code, general (default from config)")
	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", 0, "Maximum number of sources, 1-20 (default from config)")
	cmd.Flags().BoolVar(&opts.noFetch, "no-fetch", false, "Skip fetching page content; use search snippets only")
	cmd.Flags().StringVar(&opts.model, "model", "", "Ollama model for classification and query generation")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json, context")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain progress lines instead of the live panel")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Hide progress")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, root *rootOptions, question string, opts searchOptions) error {
	switch opts.format {
	case formatText, formatJSON, formatContext:
	default:
		return fmt.Errorf("unknown format %q (supported: text, json, context)", opts.format)
	}

	var renderer ui.Renderer
	var researchOpts []research.Option
	if !opts.quiet {
		renderer = ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(),
			ui.WithForcePlain(opts.plain),
			ui.WithNoColor(root.colorDisabled()),
			ui.WithQuestion(question)))
		researchOpts = append(researchOpts, research.WithProgress(ui.ProgressFunc(renderer)))
	}

	a, err := newApp(researchOpts...)
	if err != nil {
		return err
	}

	req := research.Request{
		Question:     question,
		Model:        opts.model,
		MaxResults:   opts.maxResults,
		FetchContent: a.cfg.Search.FetchContent && !opts.noFetch,
		Mode:         research.Mode(opts.mode),
	}
	if req.Mode == "" {
		req.Mode = research.Mode(a.cfg.Search.DefaultMode)
	}
	if req.MaxResults == 0 {
		req.MaxResults = a.cfg.Search.MaxResults
	}

	slog.Info("search_started",
		slog.String("mode", string(req.Mode)),
		slog.Int("max_results", req.MaxResults),
		slog.Bool("fetch_content", req.FetchContent))

	if renderer != nil {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
	}
	resp, err := a.researcher.Search(ctx, req)
	if renderer != nil {
		if err != nil {
			renderer.AddError(ui.ErrorEvent{Err: err})
		} else {
			renderer.Complete(ui.StatsFromResponse(resp))
		}
		_ = renderer.Stop()
	}
	if err != nil {
		if opts.format == formatJSON {
			writeJSONError(cmd, err)
		}
		return err
	}

	slog.Info("search_complete",
		slog.String("profile", string(resp.Profile)),
		slog.Int("queries", len(resp.Queries)),
		slog.Int("results", len(resp.Results)),
		slog.Int64("elapsed_ms", resp.ElapsedMS))

	return writeSearchResult(cmd, root, question, resp, opts.format)
}

// writeSearchResult prints resp to stdout in the requested format.
func writeSearchResult(cmd *cobra.Command, root *rootOptions, question string, resp *research.Response, format string) error {
	out := output.New(cmd.OutOrStdout())
	switch format {
	case formatJSON:
		return out.JSON(resp)
	case formatContext:
		out.Text(resp.FormattedContext)
		return nil
	default:
		r := ui.NewResultsRenderer(cmd.OutOrStdout(), root.colorDisabled(), 0)
		r.RenderQueries(resp.Queries)
		r.Render(question, resp)
		return nil
	}
}

// writeJSONError puts a machine-readable error on stdout so --format json
// consumers always get a JSON document.
func writeJSONError(cmd *cobra.Command, err error) {
	data, mErr := amerrors.FormatJSON(err)
	if mErr != nil {
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
}
