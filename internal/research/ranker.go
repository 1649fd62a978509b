package research

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

// Scoring constants for the lenient and strict passes.
const (
	shortTextChars     = 250
	shortTextPenalty   = -1.0
	genericPenalty     = -2.0
	preferredBonus     = 10.0
	timelyNewsBonus    = 15.0
	titleTermBonus     = 5.0
	snippetTermBonus   = 2.0
	pdfBonus           = 5.0
	docsBonus          = 3.0
	desperationScore   = 1.0
	desperationResults = 3
)

// Scoring constants for the general fast path.
const (
	generalWikipediaBonus = 5.0
	generalNewsBonus      = 3.0
	generalTitleTerm      = 3.0
	generalContentTerm    = 1.0
)

// Ranker scores and filters search results. Its methods are pure: the same
// inputs always give the same order and scores.
type Ranker struct {
	reg *domains.Registry
}

// NewRanker creates a ranker over reg.
func NewRanker(reg *domains.Registry) *Ranker {
	return &Ranker{reg: reg}
}

// queryTerms lower-cases query and keeps whitespace-separated words longer
// than two characters.
func queryTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

func (r *Ranker) enrich(res SearchResult, score float64) EnrichedResult {
	domain := domains.ExtractDomain(res.URL)
	return EnrichedResult{
		SearchResult: res,
		Domain:       domain,
		Favicon:      r.reg.Favicon(domain),
		Score:        score,
	}
}

// engineeringScore is the host authority bonus plus penalties for thin or
// listicle-style text.
func (r *Ranker) engineeringScore(res SearchResult) float64 {
	score := r.reg.Authority(res.URL)
	text := strings.ToLower(res.Title + " " + res.Content)
	if utf8.RuneCountInString(text) < shortTextChars {
		score += shortTextPenalty
	}
	if strings.Contains(text, "ultimate guide") {
		score += genericPenalty
	}
	if strings.Contains(text, "top 10") {
		score += genericPenalty
	}
	return score
}

// Rank scores results against query and profile, drops irrelevant ones and
// returns them in stable descending score order. strict additionally drops
// noise matches. Duplicates are kept.
func (r *Ranker) Rank(results []SearchResult, query string, profile domains.Profile, strict bool) []EnrichedResult {
	timely, _ := detectTimely(query)
	terms := queryTerms(query)

	ranked := make([]EnrichedResult, 0, len(results))
	for _, res := range results {
		e := r.enrich(res, r.engineeringScore(res))

		if _, ok := domains.FirstMatch(e.Domain, profile.PreferredDomains); ok {
			e.Score += preferredBonus
		}
		if timely && r.reg.IsNews(e.Domain) {
			e.Score += timelyNewsBonus
		}
		title, content := strings.ToLower(res.Title), strings.ToLower(res.Content)
		for _, t := range terms {
			if strings.Contains(title, t) {
				e.Score += titleTermBonus
			}
			if strings.Contains(content, t) {
				e.Score += snippetTermBonus
			}
		}
		if strings.HasSuffix(res.URL, ".pdf") {
			e.Score += pdfBonus
		}
		if strings.Contains(res.URL, "docs") || strings.Contains(res.URL, "manual") {
			e.Score += docsBonus
		}

		if r.relevant(e, query, strict) {
			ranked = append(ranked, e)
		}
	}
	sortByScore(ranked)
	return ranked
}

// relevant applies the blocklist, the preferred/news whitelist bypass, the
// strict noise filter and the ambiguous-term rule, in that order.
func (r *Ranker) relevant(e EnrichedResult, query string, strict bool) bool {
	if r.reg.IsBlocked(e.Domain) {
		return false
	}
	if r.reg.IsWhitelisted(e.Domain) {
		return true
	}
	text := strings.ToLower(e.Title + " " + e.Content)
	if strict && r.reg.IsNoise(text, e.URL) {
		return false
	}
	return !r.reg.AmbiguousMismatch(query, text)
}

// RankGeneral is the fast-path scorer: popularity of the source plus a
// light term match, no filtering.
func (r *Ranker) RankGeneral(results []SearchResult, query string) []EnrichedResult {
	terms := queryTerms(query)
	ranked := make([]EnrichedResult, 0, len(results))
	for _, res := range results {
		e := r.enrich(res, 0)
		if strings.Contains(e.Domain, "wikipedia") {
			e.Score += generalWikipediaBonus
		}
		if r.reg.IsNews(e.Domain) {
			e.Score += generalNewsBonus
		}
		if utf8.RuneCountInString(res.Title) > 20 {
			e.Score++
		}
		if utf8.RuneCountInString(res.Content) > 100 {
			e.Score++
		}
		title, content := strings.ToLower(res.Title), strings.ToLower(res.Content)
		for _, t := range terms {
			if strings.Contains(title, t) {
				e.Score += generalTitleTerm
			}
			if strings.Contains(content, t) {
				e.Score += generalContentTerm
			}
		}
		ranked = append(ranked, e)
	}
	sortByScore(ranked)
	return ranked
}

// FilterByMode drops blocked domains always, code domains outside code and
// auto mode, and industrial domains outside scientific, industrial and auto.
func (r *Ranker) FilterByMode(results []SearchResult, mode Mode) []SearchResult {
	allowCode := mode == ModeCode || mode == ModeAuto
	allowIndustrial := mode == ModeScientific || mode == ModeIndustrial || mode == ModeAuto

	out := make([]SearchResult, 0, len(results))
	for _, res := range results {
		d := domains.ExtractDomain(res.URL)
		switch {
		case r.reg.IsBlocked(d):
		case !allowCode && r.reg.IsCode(d):
		case !allowIndustrial && r.reg.IsIndustrial(d):
		default:
			out = append(out, res)
		}
	}
	return out
}

// Desperation returns the first three distinct-URL raw results with a
// nominal score, for when every ranked result was filtered out.
func (r *Ranker) Desperation(raw []SearchResult) []EnrichedResult {
	seen := make(map[string]bool)
	var out []EnrichedResult
	for _, res := range raw {
		if seen[res.URL] {
			continue
		}
		seen[res.URL] = true
		out = append(out, r.enrich(res, desperationScore))
		if len(out) == desperationResults {
			break
		}
	}
	return out
}

// dedupByURL keeps the first occurrence of every URL.
func dedupByURL(results []EnrichedResult) []EnrichedResult {
	seen := make(map[string]bool, len(results))
	out := make([]EnrichedResult, 0, len(results))
	for _, r := range results {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

func sortByScore(results []EnrichedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func capResults(results []EnrichedResult, n int) []EnrichedResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}
