// Package research implements query-adaptive web research: it classifies a
// question, fans generated queries out to SearXNG, ranks and filters the
// hits, fetches page text and assembles a context block for a local model.
//
// Every stage degrades instead of failing. Only a malformed Request is
// reported as an error.
package research

import (
	"context"
	"strings"
	"time"

	"github.com/Aman-CERP/amanweb/internal/domains"
	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/fetch"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/searxng"
)

// Mode selects how a question is researched.
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeScientific Mode = "scientific"
	ModeIndustrial Mode = "industrial"
	ModeCode       Mode = "code"
	ModeGeneral    Mode = "general"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeAuto, ModeScientific, ModeIndustrial, ModeCode, ModeGeneral}

// ParseMode parses a mode name. The empty string means auto.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeAuto, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", amerrors.ValidationError(amerrors.ErrCodeInvalidMode, "unknown search mode "+`"`+s+`"`).
		WithSuggestion("Use one of: auto, scientific, industrial, code, general")
}

// Request limits.
const (
	DefaultMaxResults = 5
	MaxResultsLimit   = 20
	MaxQuestionLength = 2000
)

// Request is one research call.
type Request struct {
	Question string `json:"question"`
	// Model overrides the configured default model.
	Model string `json:"model,omitempty"`
	// MaxResults defaults to 5 when <= 0 and is capped at 20.
	MaxResults   int  `json:"max_results,omitempty"`
	FetchContent bool `json:"fetch_content"`
	Mode         Mode `json:"mode,omitempty"`
}

// Normalize trims the question, applies defaults and validates the request.
func (r Request) Normalize(defaultModel string) (Request, error) {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return r, amerrors.ValidationError(amerrors.ErrCodeQueryEmpty, "question must not be empty")
	}
	if len([]rune(r.Question)) > MaxQuestionLength {
		return r, amerrors.ValidationError(amerrors.ErrCodeQueryTooLong, "question is too long").
			WithDetail("max_length", "2000")
	}
	mode, err := ParseMode(string(r.Mode))
	if err != nil {
		return r, err
	}
	r.Mode = mode
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.MaxResults > MaxResultsLimit {
		r.MaxResults = MaxResultsLimit
	}
	r.Model = strings.TrimSpace(r.Model)
	if r.Model == "" {
		r.Model = defaultModel
	}
	return r, nil
}

// SearchResult is one raw hit from the search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Engine  string `json:"engine"`
}

// EnrichedResult is a ranked hit. Score is recomputed by every ranking
// pass; FullContent is set once by the fetch step.
type EnrichedResult struct {
	SearchResult
	Domain      string  `json:"domain"`
	Favicon     string  `json:"favicon"`
	Score       float64 `json:"score"`
	FullContent string  `json:"full_content,omitempty"`
}

// Response is the outcome of a research call.
type Response struct {
	// Queries are all queries issued, original question first, without duplicates.
	Queries          []string         `json:"queries"`
	Results          []EnrichedResult `json:"results"`
	FormattedContext string           `json:"formatted_context"`
	Profile          domains.Category `json:"profile"`
	Mode             Mode             `json:"mode"`
	Elapsed          time.Duration    `json:"-"`
	ElapsedMS        int64            `json:"elapsed_ms"`
}

// Generator produces a non-streaming completion.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (string, error)
}

// Searcher runs one query against the search backend.
type Searcher interface {
	Search(ctx context.Context, q searxng.Query, timeout time.Duration) ([]searxng.Result, error)
}

// PageFetcher returns the extracted text of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

var (
	_ Generator   = (*ollama.Client)(nil)
	_ Searcher    = (*searxng.Client)(nil)
	_ PageFetcher = (*fetch.Fetcher)(nil)
)
