package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/searxng"
)

var errStub = errors.New("stub failure")

// stubGenerator answers each prompt kind with a canned reply and counts calls.
type stubGenerator struct {
	mu       sync.Mutex
	classify string
	queries  string
	gap      string
	summary  string
	err      error
	calls    map[string]int
	requests []ollama.GenerateRequest
}

func newStubGenerator() *stubGenerator {
	return &stubGenerator{calls: make(map[string]int)}
}

func (g *stubGenerator) Generate(_ context.Context, req ollama.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kind := promptKind(req.Prompt)
	g.calls[kind]++
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	switch kind {
	case "classify":
		return g.classify, nil
	case "queries":
		return g.queries, nil
	case "gap":
		return g.gap, nil
	default:
		return g.summary, nil
	}
}

func (g *stubGenerator) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *stubGenerator) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[kind]
}

func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "Classify this query"):
		return "classify"
	case strings.Contains(prompt, "Generate 2 advanced"):
		return "queries"
	case strings.Contains(prompt, "missing technical details"):
		return "gap"
	default:
		return "summarize"
	}
}

type searchCall struct {
	query   searxng.Query
	timeout time.Duration
}

// stubSearcher serves results per engine set. A nil respond returns the
// fixed results for every call.
type stubSearcher struct {
	mu      sync.Mutex
	results []searxng.Result
	respond func(q searxng.Query) ([]searxng.Result, error)
	calls   []searchCall
}

func (s *stubSearcher) Search(_ context.Context, q searxng.Query, timeout time.Duration) ([]searxng.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, searchCall{query: q, timeout: timeout})
	respond := s.respond
	s.mu.Unlock()

	if respond != nil {
		return respond(q)
	}
	out := make([]searxng.Result, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *stubSearcher) queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		out = append(out, c.query.Q)
	}
	return out
}

func (s *stubSearcher) snapshot() []searchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]searchCall(nil), s.calls...)
}

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if text, ok := f.pages[url]; ok {
		return text, nil
	}
	return "", errStub
}

func failingSearch(searxng.Query) ([]searxng.Result, error) {
	return nil, errStub
}

func hit(url, title, content string) searxng.Result {
	return searxng.Result{URL: url, Title: title, Content: content, Engine: "google"}
}

func raw(url, title, content string) SearchResult {
	return SearchResult{URL: url, Title: title, Content: content, Engine: "google"}
}

func urlsOf(results []EnrichedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URL
	}
	return out
}

func testRegistry() *domains.Registry {
	return domains.Default()
}
