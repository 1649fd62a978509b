package research

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/searxng"
)

const question = "electrode coating defects"

// mixedHits covers every filter the pipeline applies.
func mixedHits() []searxng.Result {
	return []searxng.Result{
		hit("https://arxiv.org/abs/2401.1", "Electrode coating defects in lithium cells", "Slot die electrode coating defects studied."),
		hit("https://github.com/acme/coater", "Electrode coating simulator", "Open source coating model."),
		hit("https://medium.com/@x/coating", "Electrode coating explained", "A blog post."),
		hit("https://www.siemens.com/battery/coating", "Electrode coating line automation", "Coating line control."),
		hit("https://example.com/coating", "Coating overview", "Generic overview of coating."),
		hit("https://www.quora.com/q/coating", "Why do coatings crack?", "Answers."),
	}
}

// strongHits are three preferred scientific sources that all score above
// the high-quality threshold.
func strongHits() []searxng.Result {
	return []searxng.Result{
		hit("https://arxiv.org/abs/1", "Electrode coating defects review", "Survey."),
		hit("https://ieee.org/document/2", "Electrode coating defects detection", "Vision system."),
		hit("https://www.nature.com/articles/3", "Electrode coating defects and cracking", "Drying."),
	}
}

func newTestResearcher(gen Generator, search Searcher, fetcher PageFetcher, cfg Config, opts ...Option) *Researcher {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "test-model"
	}
	return New(testRegistry(), gen, search, fetcher, cfg, opts...)
}

func TestSearch_RejectsMalformedRequest(t *testing.T) {
	r := newTestResearcher(newStubGenerator(), &stubSearcher{}, nil, Config{})

	tests := []struct {
		name string
		req  Request
		code string
	}{
		{"empty", Request{Question: "   "}, amerrors.ErrCodeQueryEmpty},
		{"too long", Request{Question: strings.Repeat("x", MaxQuestionLength+1)}, amerrors.ErrCodeQueryTooLong},
		{"unknown mode", Request{Question: "q", Mode: "poetry"}, amerrors.ErrCodeInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := r.Search(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.code, amerrors.GetCode(err))
		})
	}
}

func TestSearch_GeneralFastPath(t *testing.T) {
	// Given: a general-mode request
	gen := newStubGenerator()
	search := &stubSearcher{results: []searxng.Result{
		hit("https://en.wikipedia.org/wiki/Lithium", "Lithium - Wikipedia", "Lithium is a chemical element."),
		hit("https://www.reuters.com/markets/lithium", "Lithium prices", "Market news."),
		hit("https://example.com/li", "Li", "x"),
	}}
	r := newTestResearcher(gen, search, &stubFetcher{}, Config{})

	// When: researching
	resp, err := r.Search(context.Background(), Request{Question: "what is lithium", Mode: ModeGeneral, FetchContent: true})

	// Then: one search, no model calls, snippet context
	require.NoError(t, err)
	assert.Equal(t, 0, gen.total())
	assert.Equal(t, []string{"what is lithium"}, resp.Queries)
	assert.Equal(t, ModeGeneral, resp.Mode)
	require.Len(t, search.snapshot(), 1)
	assert.Equal(t, "google,bing,duckduckgo,wikipedia", search.snapshot()[0].query.Engines)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Lithium", resp.Results[0].URL)
	assert.True(t, strings.HasPrefix(resp.FormattedContext, "Found 3 results for general query:"))
	for _, res := range resp.Results {
		assert.Empty(t, res.FullContent)
	}
}

func TestSearch_GeneralFastPathTimeRange(t *testing.T) {
	search := &stubSearcher{results: []searxng.Result{hit("https://bbc.com/n", "News", "Today.")}}
	r := newTestResearcher(nil, search, nil, Config{})

	_, err := r.Search(context.Background(), Request{Question: "latest election results", Mode: ModeGeneral})

	require.NoError(t, err)
	assert.Equal(t, TimeRangeDay, search.snapshot()[0].query.TimeRange)
}

func TestSearch_ScientificFiltersAndHeader(t *testing.T) {
	// Given: hits from blocked, code, industrial and neutral hosts
	search := &stubSearcher{results: mixedHits()}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{})

	// When: researching in scientific mode
	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific})

	// Then: blocked and code hosts are gone, industrial hosts survive
	require.NoError(t, err)
	urls := urlsOf(resp.Results)
	assert.NotContains(t, urls, "https://medium.com/@x/coating")
	assert.NotContains(t, urls, "https://www.quora.com/q/coating")
	assert.NotContains(t, urls, "https://github.com/acme/coater")
	assert.Contains(t, urls, "https://www.siemens.com/battery/coating")
	assert.Contains(t, urls, "https://arxiv.org/abs/2401.1")

	assert.True(t, strings.HasPrefix(resp.FormattedContext, "Found 3 results (Mode: scientific):"))
	assert.Contains(t, resp.FormattedContext, "=== ACADEMIC & RESEARCH ===")
	assert.Equal(t, len(resp.Results), strings.Count(resp.FormattedContext, "SOURCE "))
	assert.Equal(t, ModeScientific, resp.Mode)
}

func TestResearcher_GeneralModeFilter(t *testing.T) {
	r := newTestResearcher(nil, nil, nil, Config{})
	filtered := r.ranker.FilterByMode([]SearchResult{
		raw("https://github.com/a/b", "a", "b"),
		raw("https://www.siemens.com/x", "a", "b"),
		raw("https://example.com", "a", "b"),
	}, ModeGeneral)

	require.Len(t, filtered, 1)
	assert.Equal(t, "https://example.com", filtered[0].URL)
}

func TestSearch_ResultsAreUniqueAndCapped(t *testing.T) {
	var hits []searxng.Result
	for i := 0; i < 30; i++ {
		u := "https://example.com/" + string(rune('a'+i%10))
		hits = append(hits, hit(u, "Electrode coating note", "coating"))
	}
	search := &stubSearcher{results: hits}
	gen := newStubGenerator()
	gen.queries = "electrode slurry viscosity\ncalendering pressure"
	r := newTestResearcher(gen, search, nil, Config{})

	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeIndustrial, MaxResults: 4})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 4)
	seen := make(map[string]bool)
	for _, u := range urlsOf(resp.Results) {
		assert.False(t, seen[u], "duplicate %s", u)
		seen[u] = true
	}
}

func TestSearch_TotalSearchFailure(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			search := &stubSearcher{respond: failingSearch}
			r := newTestResearcher(newStubGenerator(), search, nil, Config{})

			resp, err := r.Search(context.Background(), Request{Question: question, Mode: mode})

			require.NoError(t, err)
			assert.Empty(t, resp.Results)
			assert.Equal(t, NoResultsContext, resp.FormattedContext)
			assert.Equal(t, question, resp.Queries[0])
		})
	}
}

func TestSearch_LLMDownDegrades(t *testing.T) {
	// Given: a model server that fails every call
	gen := newStubGenerator()
	gen.err = errStub
	search := &stubSearcher{results: mixedHits()}
	r := newTestResearcher(gen, search, nil, Config{})

	// When: researching in auto mode
	resp, err := r.Search(context.Background(), Request{Question: question})

	// Then: the general profile and the bare question are used
	require.NoError(t, err)
	assert.Equal(t, "general", string(resp.Profile))
	assert.Equal(t, question, resp.Queries[0])
	assert.NotEmpty(t, resp.Results)
}

func TestSearch_ManualModeStopsOnStrongResults(t *testing.T) {
	search := &stubSearcher{results: strongHits()}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{})

	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific})

	require.NoError(t, err)
	assert.Equal(t, []string{question}, resp.Queries)
	assert.Equal(t, []string{question}, search.queries())
}

func TestSearch_ManualModeSearchesDetailedOnWeakResults(t *testing.T) {
	search := &stubSearcher{results: []searxng.Result{hit("https://example.com/1", "Unrelated", "Nothing here.")}}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{})

	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeCode})

	require.NoError(t, err)
	assert.Equal(t, []string{question, question + " detailed"}, resp.Queries)
}

func TestSearch_AutoModeFollowsGapQueries(t *testing.T) {
	// Given: a classifier, query generator and gap evaluator with fixed replies
	gen := newStubGenerator()
	gen.classify = "battery"
	gen.queries = "1. slot die coating uniformity\n2. electrode drying crack formation"
	gen.gap = "binder migration during drying\nSOLID content effect on coating"
	search := &stubSearcher{results: []searxng.Result{hit("https://example.com/1", "Unrelated", "Nothing here.")}}
	r := newTestResearcher(gen, search, nil, Config{})

	// When: researching in auto mode
	resp, err := r.Search(context.Background(), Request{Question: question})

	// Then: all issued queries are reported in order
	require.NoError(t, err)
	assert.Equal(t, "battery", string(resp.Profile))
	assert.Equal(t, []string{
		question,
		"slot die coating uniformity",
		"electrode drying crack formation",
		"binder migration during drying",
		"SOLID content effect on coating",
	}, resp.Queries)
	assert.Equal(t, 1, gen.count("classify"))
	assert.Equal(t, 1, gen.count("gap"))
	assert.Len(t, search.queries(), 5)
}

func TestSearch_TimelyQueryAugmentation(t *testing.T) {
	// Given: a timely question without a year
	gen := newStubGenerator()
	gen.queries = "solid state electrolyte roadmap\nsulfide electrolyte suppliers"
	search := &stubSearcher{results: strongHits()}
	clock := func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	r := newTestResearcher(gen, search, nil, Config{}, WithClock(clock))

	// When: researching
	q := "latest solid state battery progress"
	resp, err := r.Search(context.Background(), Request{Question: q, Mode: ModeScientific})

	// Then: the year query is second and the per-iteration cap drops a generated one
	require.NoError(t, err)
	assert.Equal(t, []string{q, q + " 2026", "solid state electrolyte roadmap", q + " detailed"}, resp.Queries)
	for _, c := range search.snapshot() {
		assert.Equal(t, TimeRangeDay, c.query.TimeRange)
	}
}

func TestSearch_ZeroResultsRetriesDirectSearch(t *testing.T) {
	var n int
	search := &stubSearcher{}
	search.respond = func(q searxng.Query) ([]searxng.Result, error) {
		n++
		// Fail every strategy of both iterations, then answer the retry.
		if n <= 8 {
			return nil, errStub
		}
		return strongHits(), nil
	}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{Parallelism: 1})

	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeCode})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestSearch_DesperationFallback(t *testing.T) {
	// Given: every hit is about the unrelated namesake of "jakarta"
	search := &stubSearcher{results: []searxng.Result{
		hit("https://example.com/1", "Jakarta EE servlet guide", "Jakarta EE"),
		hit("https://example.com/2", "Jakarta Servlet spec", "Jakarta servlet"),
		hit("https://example.com/3", "Jakarta Enterprise beans", "Jakarta enterprise"),
		hit("https://example.com/4", "Jakarta EE 11", "Jakarta EE"),
	}}
	r := newTestResearcher(nil, search, nil, Config{})

	// When: the question is about the city
	resp, err := r.Search(context.Background(), Request{Question: "jakarta flood barrier design", Mode: ModeIndustrial})

	// Then: the first three raw hits are kept rather than nothing
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, urlsOf(resp.Results))
}

func TestSearch_FetchAndSummarize(t *testing.T) {
	page := strings.Repeat("Electrode coating defects arise from drying stress. ", 5)
	fetcher := &stubFetcher{pages: map[string]string{"https://arxiv.org/abs/1": page}}

	t.Run("fetch only", func(t *testing.T) {
		search := &stubSearcher{results: strongHits()}
		r := newTestResearcher(newStubGenerator(), search, fetcher, Config{})

		resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific, FetchContent: true})

		require.NoError(t, err)
		var fetched int
		for _, res := range resp.Results {
			if res.FullContent != "" {
				fetched++
				assert.Equal(t, page, res.FullContent)
			}
		}
		assert.Equal(t, 1, fetched)
		assert.Contains(t, resp.FormattedContext, "Content: Electrode coating defects")
		assert.Contains(t, resp.FormattedContext, "Snippet: ")
	})

	t.Run("summarized", func(t *testing.T) {
		gen := newStubGenerator()
		gen.summary = "- drying stress causes cracks"
		search := &stubSearcher{results: strongHits()}
		r := newTestResearcher(gen, search, fetcher, Config{Summarize: true})

		resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific, FetchContent: true})

		require.NoError(t, err)
		assert.Equal(t, 1, gen.count("summarize"))
		for _, res := range resp.Results {
			if res.URL == "https://arxiv.org/abs/1" {
				assert.Equal(t, "- drying stress causes cracks", res.FullContent)
			}
		}
	})
}

func TestSearch_Deterministic(t *testing.T) {
	gen := newStubGenerator()
	gen.queries = "electrode slurry viscosity\ncalendering pressure"
	search := &stubSearcher{results: mixedHits()}
	r := newTestResearcher(gen, search, nil, Config{})
	req := Request{Question: question, Mode: ModeIndustrial}

	first, err := r.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.FormattedContext, second.FormattedContext)
	assert.Equal(t, first.Queries, second.Queries)
}

func TestSearch_ReportsProgress(t *testing.T) {
	var stages []string
	search := &stubSearcher{results: strongHits()}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{},
		WithProgress(func(p Progress) { stages = append(stages, p.Stage) }))

	_, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific})

	require.NoError(t, err)
	assert.Equal(t, []string{StageClassify, StageQueries, StageSearch, StageEvaluate, StageRank, StageAssemble}, stages)
}

func TestSearch_ModelOverride(t *testing.T) {
	gen := newStubGenerator()
	gen.classify = "automation"
	r := newTestResearcher(gen, &stubSearcher{results: strongHits()}, nil, Config{})

	_, err := r.Search(context.Background(), Request{Question: question, Model: "qwen2.5:7b"})

	require.NoError(t, err)
	for _, req := range gen.requests {
		assert.Equal(t, "qwen2.5:7b", req.Model)
	}
}

func TestSearch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	search := &stubSearcher{results: strongHits()}
	r := newTestResearcher(newStubGenerator(), search, nil, Config{})

	resp, err := r.Search(ctx, Request{Question: question, Mode: ModeScientific})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, NoResultsContext, resp.FormattedContext)
}

// cleanAndNoisyHits returns clean hits followed by promotional ones, all on
// neutral hosts so no whitelist applies.
func cleanAndNoisyHits(clean, noisy int) ([]searxng.Result, []string, []string) {
	var hits []searxng.Result
	var cleanURLs, noisyURLs []string
	for i := 0; i < clean; i++ {
		u := fmt.Sprintf("https://lab%d.example.org/coating", i)
		hits = append(hits, hit(u, "Electrode coating defects measured", "Crack density versus drying rate."))
		cleanURLs = append(cleanURLs, u)
	}
	for i := 0; i < noisy; i++ {
		u := fmt.Sprintf("https://shop%d.example.net/coater", i)
		hits = append(hits, hit(u, "Electrode coating machine promo code", "Buy cheap coaters today."))
		noisyURLs = append(noisyURLs, u)
	}
	return hits, cleanURLs, noisyURLs
}

func TestSearch_StrictPassReplacesLargeLenientSet(t *testing.T) {
	// Given: twelve relevant hits, three of them promotional noise
	hits, clean, noisy := cleanAndNoisyHits(9, 3)
	r := newTestResearcher(nil, &stubSearcher{results: hits}, nil, Config{})

	// When: researching with room for every result
	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific, MaxResults: 20})

	// Then: the strict set of nine clean hits replaces the lenient twelve
	require.NoError(t, err)
	urls := urlsOf(resp.Results)
	assert.ElementsMatch(t, clean, urls)
	for _, u := range noisy {
		assert.NotContains(t, urls, u)
	}
}

func TestSearch_StrictPassTooSmallKeepsLenientSet(t *testing.T) {
	// Given: twelve hits of which only two survive the noise filter
	hits, clean, noisy := cleanAndNoisyHits(2, 10)
	r := newTestResearcher(nil, &stubSearcher{results: hits}, nil, Config{})

	// When: researching with room for every result
	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific, MaxResults: 20})

	// Then: the lenient set is kept, noise included
	require.NoError(t, err)
	assert.ElementsMatch(t, append(clean, noisy...), urlsOf(resp.Results))
}

func TestSearch_SmallLenientSetSkipsStrictPass(t *testing.T) {
	hits, clean, noisy := cleanAndNoisyHits(5, 3)
	r := newTestResearcher(nil, &stubSearcher{results: hits}, nil, Config{})

	resp, err := r.Search(context.Background(), Request{Question: question, Mode: ModeScientific, MaxResults: 20})

	require.NoError(t, err)
	assert.ElementsMatch(t, append(clean, noisy...), urlsOf(resp.Results))
}
