package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

func TestRank_ScoreComponents(t *testing.T) {
	reg := testRegistry()
	r := NewRanker(reg)
	battery := reg.CategoryProfile(domains.CategoryBattery)
	scientific, ok := reg.ModeProfile("scientific")
	require.True(t, ok)

	tests := []struct {
		name    string
		res     SearchResult
		query   string
		profile domains.Profile
		want    float64
	}{
		{"authority and short text", raw("https://arxiv.org/abs/1", "x", ""), "zz", battery, 1.5},
		{"preferred bonus", raw("https://arxiv.org/abs/1", "x", ""), "zz", scientific, 11.5},
		{"title and snippet terms", raw("https://example.com/a", "Cathode slurry", "cathode"), "cathode slurry", battery, -1 + 5 + 5 + 2},
		{"pdf and docs", raw("https://example.com/docs/spec.pdf", "x", ""), "zz", battery, -1 + 5 + 3},
		{"listicle penalty", raw("https://example.com/a", "Top 10 cathodes", ""), "zz", battery, -1 - 2},
		{"timely news", raw("https://www.reuters.com/a", "x", ""), "latest cathode", battery, -1 + 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := r.Rank([]SearchResult{tt.res}, tt.query, tt.profile, false)

			require.Len(t, ranked, 1)
			assert.InDelta(t, tt.want, ranked[0].Score, 1e-9)
		})
	}
}

func TestRank_EnrichesDomainAndFavicon(t *testing.T) {
	r := NewRanker(testRegistry())

	ranked := r.Rank([]SearchResult{raw("https://www.IEEE.org/doc/1", "x", "")}, "q", domains.Profile{}, false)

	require.Len(t, ranked, 1)
	assert.Equal(t, "ieee.org", ranked[0].Domain)
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=ieee.org&sz=32", ranked[0].Favicon)
}

func TestRank_Filters(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://medium.com/p", "cathode", ""),
		raw("https://example.com/promo", "Cathode coupon", "buy cheap"),
		raw("https://github.com/promo", "Top 10 reasons to love cathodes", ""),
		raw("https://example.com/ok", "Cathode design", ""),
	}

	lenient := urlsOf(r.Rank(input, "cathode", domains.Profile{}, false))
	strict := urlsOf(r.Rank(input, "cathode", domains.Profile{}, true))

	assert.NotContains(t, lenient, "https://medium.com/p", "blocked in every pass")
	assert.Contains(t, lenient, "https://example.com/promo")
	assert.NotContains(t, strict, "https://example.com/promo", "noise dropped in strict pass")
	assert.Contains(t, strict, "https://github.com/promo", "whitelisted hosts bypass noise")
	assert.Contains(t, strict, "https://example.com/ok")
}

func TestRank_AmbiguousTerm(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://example.com/ee", "Jakarta EE tutorial", ""),
		raw("https://example.com/city", "Jakarta sea wall", ""),
	}

	city := urlsOf(r.Rank(input, "jakarta sea wall", domains.Profile{}, false))
	java := urlsOf(r.Rank(input, "jakarta java migration", domains.Profile{}, false))

	assert.Equal(t, []string{"https://example.com/city"}, city)
	assert.Len(t, java, 2)
}

func TestRank_StableAndIdempotent(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://example.com/1", "a", ""),
		raw("https://example.com/2", "b", ""),
		raw("https://arxiv.org/3", "c", ""),
		raw("https://example.com/4", "d", ""),
	}
	profile := testRegistry().CategoryProfile(domains.CategoryBattery)

	first := r.Rank(input, "q", profile, false)
	second := r.Rank(input, "q", profile, false)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"https://arxiv.org/3",
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/4",
	}, urlsOf(first), "ties keep input order")
	assert.Equal(t, "https://example.com/1", input[0].URL, "input untouched")
}

func TestRank_KeepsDuplicates(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{raw("https://example.com/1", "a", ""), raw("https://example.com/1", "a", "")}

	ranked := r.Rank(input, "q", domains.Profile{}, false)

	assert.Len(t, ranked, 2)
	assert.Len(t, dedupByURL(ranked), 1)
}

func TestRankGeneral(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://example.com/x", "Something else entirely", ""),
		raw("https://en.wikipedia.org/wiki/Graphite", "Graphite", ""),
		raw("https://www.bbc.com/news/1", "Graphite mining", ""),
		raw("https://medium.com/p", "Graphite", ""),
	}

	ranked := r.RankGeneral(input, "graphite")

	// wikipedia 5+3, bbc 3+3, medium 3, example 1
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Graphite",
		"https://www.bbc.com/news/1",
		"https://medium.com/p",
		"https://example.com/x",
	}, urlsOf(ranked))
	assert.InDelta(t, 8.0, ranked[0].Score, 1e-9)
}

func TestFilterByMode(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://github.com/a/b", "", ""),
		raw("https://www.siemens.com/x", "", ""),
		raw("https://pinterest.com/p", "", ""),
		raw("https://arxiv.org/abs/1", "", ""),
	}

	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeAuto, []string{"https://github.com/a/b", "https://www.siemens.com/x", "https://arxiv.org/abs/1"}},
		{ModeScientific, []string{"https://www.siemens.com/x", "https://arxiv.org/abs/1"}},
		{ModeIndustrial, []string{"https://www.siemens.com/x", "https://arxiv.org/abs/1"}},
		{ModeCode, []string{"https://github.com/a/b", "https://arxiv.org/abs/1"}},
		{ModeGeneral, []string{"https://arxiv.org/abs/1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var got []string
			for _, res := range r.FilterByMode(input, tt.mode) {
				got = append(got, res.URL)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDesperation(t *testing.T) {
	r := NewRanker(testRegistry())
	input := []SearchResult{
		raw("https://example.com/1", "", ""),
		raw("https://example.com/1", "", ""),
		raw("https://example.com/2", "", ""),
		raw("https://example.com/3", "", ""),
		raw("https://example.com/4", "", ""),
	}

	got := r.Desperation(input)

	assert.Equal(t, []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, urlsOf(got))
	for _, e := range got {
		assert.Equal(t, 1.0, e.Score)
	}
}

func TestCapResults(t *testing.T) {
	in := []EnrichedResult{{}, {}, {}}

	assert.Len(t, capResults(in, 2), 2)
	assert.Len(t, capResults(in, 5), 3)
}
