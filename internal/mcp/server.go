package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/fetch"
	"github.com/Aman-CERP/amanweb/internal/research"
	"github.com/Aman-CERP/amanweb/pkg/version"
)

// Researcher runs one research call.
type Researcher interface {
	Search(ctx context.Context, req research.Request) (*research.Response, error)
}

// PageReader retrieves page text.
type PageReader interface {
	Fetch(ctx context.Context, url string) (string, error)
	Article(ctx context.Context, url string, maxChars int) (*fetch.Article, error)
}

var (
	_ Researcher = (*research.Researcher)(nil)
	_ PageReader = (*fetch.Fetcher)(nil)
)

// Server is the MCP server for AmanWeb.
// It exposes the research pipeline and the page fetcher to AI clients.
type Server struct {
	mcp        *mcp.Server
	researcher Researcher
	pages      PageReader
	registry   *domains.Registry
	logger     *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// ResourceInfo contains information about a resource.
type ResourceInfo struct {
	URI      string
	Name     string
	MIMEType string
}

// ResourceContent contains the content of a resource.
type ResourceContent struct {
	URI      string
	Content  string
	MIMEType string
}

const (
	webSearchDescription = "Research a question on the live web. Classifies the question, generates search queries, " +
		"ranks results by source quality and returns numbered sources with page excerpts. " +
		"Use mode=general for quick factual lookups and news; it skips the language model entirely."
	fetchPageDescription = "Download one web page or PDF and return its text. " +
		"Set readable=true to extract the main article with its title and byline."
)

// NewServer creates a new MCP server. A nil registry uses the built-in domain list.
func NewServer(researcher Researcher, pages PageReader, registry *domains.Registry) (*Server, error) {
	if researcher == nil {
		return nil, errors.New("researcher is required")
	}
	if pages == nil {
		return nil, errors.New("page reader is required")
	}
	if registry == nil {
		registry = domains.Default()
	}

	s := &Server{
		researcher: researcher,
		pages:      pages,
		registry:   registry,
		logger:     slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "AmanWeb",
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools and resources
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "AmanWeb", version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: ToolWebSearch, Description: webSearchDescription},
		{Name: ToolFetchPage, Description: fetchPageDescription},
	}
}

// CallTool invokes a tool by name with JSON-decoded arguments and returns
// markdown.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolWebSearch:
		return s.handleWebSearchTool(ctx, args)
	case ToolFetchPage:
		return s.handleFetchPageTool(ctx, args)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

// handleWebSearchTool handles the web_search tool invocation.
func (s *Server) handleWebSearchTool(ctx context.Context, args map[string]any) (string, error) {
	question, ok := args["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return "", NewInvalidParamsError("question parameter is required and must be a non-empty string")
	}

	in := WebSearchInput{Question: question}
	if m, ok := args["mode"].(string); ok {
		in.Mode = m
	}
	if n, ok := args["max_results"].(float64); ok {
		in.MaxResults = int(n)
	}
	if f, ok := args["fetch_content"].(bool); ok {
		in.FetchContent = &f
	}
	if m, ok := args["model"].(string); ok {
		in.Model = m
	}

	resp, err := s.webSearch(ctx, in)
	if err != nil {
		return "", err
	}
	return FormatResearch(question, resp), nil
}

// handleFetchPageTool handles the fetch_page tool invocation.
func (s *Server) handleFetchPageTool(ctx context.Context, args map[string]any) (string, error) {
	rawURL, ok := args["url"].(string)
	if !ok || strings.TrimSpace(rawURL) == "" {
		return "", NewInvalidParamsError("url parameter is required and must be a non-empty string")
	}

	in := FetchPageInput{URL: rawURL}
	if r, ok := args["readable"].(bool); ok {
		in.Readable = r
	}
	if n, ok := args["max_chars"].(float64); ok {
		in.MaxChars = int(n)
	}

	out, err := s.fetchPage(ctx, in)
	if err != nil {
		return "", err
	}
	return FormatPage(out), nil
}

// webSearch runs the research pipeline with request logging.
func (s *Server) webSearch(ctx context.Context, in WebSearchInput) (*research.Response, error) {
	start := time.Now()
	requestID := generateRequestID()

	s.logger.Info("web_search started",
		slog.String("request_id", requestID),
		slog.String("question", in.Question),
		slog.String("mode", in.Mode),
		slog.Int("max_results", in.MaxResults))

	resp, err := s.researcher.Search(ctx, in.toRequest())
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("web_search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	s.logger.Info("web_search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(resp.Results)))
	return resp, nil
}

// fetchPage downloads one page, readable or raw.
func (s *Server) fetchPage(ctx context.Context, in FetchPageInput) (FetchPageOutput, error) {
	requestID := generateRequestID()
	maxChars := clampChars(in.MaxChars)

	s.logger.Info("fetch_page started",
		slog.String("request_id", requestID),
		slog.String("url", in.URL),
		slog.Bool("readable", in.Readable))

	if in.Readable {
		article, err := s.pages.Article(ctx, in.URL, maxChars)
		if err != nil {
			s.logger.Warn("fetch_page failed",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()))
			return FetchPageOutput{}, MapError(err)
		}
		return FetchPageOutput{
			URL:      article.URL,
			Title:    article.Title,
			Byline:   article.Byline,
			SiteName: article.SiteName,
			Text:     article.Text,
		}, nil
	}

	text, err := s.pages.Fetch(ctx, in.URL)
	if err != nil {
		s.logger.Warn("fetch_page failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return FetchPageOutput{}, MapError(err)
	}
	if r := []rune(text); len(r) > maxChars {
		text = string(r[:maxChars])
	}
	return FetchPageOutput{URL: in.URL, Text: text}, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolWebSearch,
		Description: webSearchDescription,
	}, s.mcpWebSearchHandler)
	s.logger.Debug("Registered tool", slog.String("name", ToolWebSearch))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolFetchPage,
		Description: fetchPageDescription,
	}, s.mcpFetchPageHandler)
	s.logger.Debug("Registered tool", slog.String("name", ToolFetchPage))

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

// mcpWebSearchHandler is the MCP SDK handler for the web_search tool.
func (s *Server) mcpWebSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input WebSearchInput) (
	*mcp.CallToolResult,
	WebSearchOutput,
	error,
) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, WebSearchOutput{}, NewInvalidParamsError("question parameter is required")
	}
	resp, err := s.webSearch(ctx, input)
	if err != nil {
		return nil, WebSearchOutput{}, err
	}
	return nil, toOutput(resp), nil
}

// mcpFetchPageHandler is the MCP SDK handler for the fetch_page tool.
func (s *Server) mcpFetchPageHandler(ctx context.Context, _ *mcp.CallToolRequest, input FetchPageInput) (
	*mcp.CallToolResult,
	FetchPageOutput,
	error,
) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, FetchPageOutput{}, NewInvalidParamsError("url parameter is required")
	}
	out, err := s.fetchPage(ctx, input)
	if err != nil {
		return nil, FetchPageOutput{}, err
	}
	return nil, out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	return uuid.NewString()[:8]
}
