package mcp

import (
	"github.com/Aman-CERP/amanweb/internal/research"
)

// Tool names.
const (
	ToolWebSearch = "web_search"
	ToolFetchPage = "fetch_page"
)

// DefaultPageChars is the fetch_page text limit when max_chars is unset.
const DefaultPageChars = 8000

// WebSearchInput defines the input schema for the web_search tool.
type WebSearchInput struct {
	Question     string `json:"question" jsonschema:"the question to research on the web"`
	Mode         string `json:"mode,omitempty" jsonschema:"search mode: auto, scientific, industrial, code or general. default auto"`
	MaxResults   int    `json:"max_results,omitempty" jsonschema:"number of sources to return, default 5, at most 20"`
	FetchContent *bool  `json:"fetch_content,omitempty" jsonschema:"download page text for each source, default true"`
	Model        string `json:"model,omitempty" jsonschema:"Ollama model used for classification and query generation"`
}

// WebSearchOutput defines the output schema for the web_search tool.
type WebSearchOutput struct {
	Queries          []string    `json:"queries" jsonschema:"queries sent to the search backend, original question first"`
	Profile          string      `json:"profile" jsonschema:"domain profile used for ranking"`
	Mode             string      `json:"mode" jsonschema:"search mode that was applied"`
	Results          []WebResult `json:"results" jsonschema:"ranked sources"`
	FormattedContext string      `json:"formatted_context" jsonschema:"numbered source block ready to paste into a prompt"`
	ElapsedMS        int64       `json:"elapsed_ms" jsonschema:"wall time of the research call in milliseconds"`
}

// WebResult is a single ranked source.
type WebResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Domain  string  `json:"domain"`
	Snippet string  `json:"snippet,omitempty"`
	Engine  string  `json:"engine,omitempty"`
	Score   float64 `json:"score" jsonschema:"relevance score, higher is better"`
	Fetched bool    `json:"fetched" jsonschema:"true if full page text was retrieved"`
}

// FetchPageInput defines the input schema for the fetch_page tool.
type FetchPageInput struct {
	URL      string `json:"url" jsonschema:"absolute http(s) URL of the page"`
	Readable bool   `json:"readable,omitempty" jsonschema:"run article extraction and return title and byline"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"maximum characters of text, default 8000"`
}

// FetchPageOutput defines the output schema for the fetch_page tool.
type FetchPageOutput struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Byline   string `json:"byline,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Text     string `json:"text"`
}

// toRequest converts tool input into a research request.
func (in WebSearchInput) toRequest() research.Request {
	fetch := true
	if in.FetchContent != nil {
		fetch = *in.FetchContent
	}
	return research.Request{
		Question:     in.Question,
		Model:        in.Model,
		MaxResults:   in.MaxResults,
		FetchContent: fetch,
		Mode:         research.Mode(in.Mode),
	}
}

// toOutput converts a research response into the tool output schema.
func toOutput(resp *research.Response) WebSearchOutput {
	out := WebSearchOutput{
		Queries:          resp.Queries,
		Profile:          string(resp.Profile),
		Mode:             string(resp.Mode),
		Results:          make([]WebResult, 0, len(resp.Results)),
		FormattedContext: resp.FormattedContext,
		ElapsedMS:        resp.ElapsedMS,
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Domain:  r.Domain,
			Snippet: r.Content,
			Engine:  r.Engine,
			Score:   r.Score,
			Fetched: r.FullContent != "",
		})
	}
	return out
}

// clampChars applies the fetch_page text limit.
func clampChars(n int) int {
	if n <= 0 {
		return DefaultPageChars
	}
	return n
}
