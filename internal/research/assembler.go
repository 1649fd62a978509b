package research

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

// NoResultsContext is the formatted context when nothing was found.
const NoResultsContext = "No search results found for your query."

// Re-rank constants.
const (
	rerankPreferredBonus = 3.0
	rerankKeywordBonus   = 0.5
	rerankShortChars     = 300
	rerankLongChars      = 200
	rerankMaxTermHits    = 15
	rerankSpecBonus      = 3.0
)

var anyDigit = regexp.MustCompile(`\d`)

// section is one titled block of a context template.
type section struct {
	header  string
	buckets []domains.Bucket
}

// template describes how one mode lays out its context.
type template struct {
	sections    []section
	skipEmpty   bool
	instruction string
}

var templates = map[Mode]template{
	ModeScientific: {
		sections: []section{{
			header:  "=== ACADEMIC & RESEARCH ===",
			buckets: []domains.Bucket{domains.BucketPapers, domains.BucketGeneral, domains.BucketIndustry, domains.BucketCode},
		}},
		instruction: "Focus on scientific methodology, experimental results, and theoretical foundations.",
	},
	ModeIndustrial: {
		sections: []section{{
			header:  "=== INDUSTRIAL STANDARDS & SPECIFICATIONS ===",
			buckets: []domains.Bucket{domains.BucketIndustry, domains.BucketPapers, domains.BucketGeneral, domains.BucketCode},
		}},
		instruction: "Focus on compliance standards, specifications, and manufacturing constraints.",
	},
	ModeCode: {
		sections: []section{{
			header:  "=== IMPLEMENTATION & CODE ===",
			buckets: []domains.Bucket{domains.BucketCode, domains.BucketGeneral, domains.BucketPapers, domains.BucketIndustry},
		}},
		instruction: "Focus on implementation details, code examples, and technical documentation.",
	},
	ModeAuto: {
		sections: []section{
			{header: "=== ACADEMIC & THEORY (Papers) ===", buckets: []domains.Bucket{domains.BucketPapers}},
			{header: "=== IMPLEMENTATION (Code) ===", buckets: []domains.Bucket{domains.BucketCode}},
			{header: "=== INDUSTRIAL STANDARDS ===", buckets: []domains.Bucket{domains.BucketIndustry}},
			{header: "=== GENERAL CONTEXT ===", buckets: []domains.Bucket{domains.BucketGeneral}},
		},
		skipEmpty:   true,
		instruction: "Explain using theory (papers), implementation (code), and industrial constraints.",
	},
}

const generalInstruction = "Provide a clear, concise answer based on the snippets above."

// Assembler re-ranks fetched results and renders the context block.
type Assembler struct {
	reg          *domains.Registry
	excerptChars int
}

// NewAssembler creates an assembler over reg.
func NewAssembler(reg *domains.Registry) *Assembler {
	return &Assembler{reg: reg, excerptChars: DefaultExcerptChars}
}

// ReRank adjusts each score using the fetched text (or the snippet when
// nothing was fetched) and returns a stable descending sort. The input
// slice is not modified.
func (a *Assembler) ReRank(results []EnrichedResult, query string, profile domains.Profile) []EnrichedResult {
	terms := queryTerms(query)
	out := make([]EnrichedResult, len(results))
	for i, r := range results {
		text := r.FullContent
		if text == "" {
			text = r.Content
		}
		text = strings.ToLower(text)
		n := utf8.RuneCountInString(text)

		if _, ok := domains.FirstMatch(r.Domain, profile.PreferredDomains); ok {
			r.Score += rerankPreferredBonus
		}
		for _, kw := range profile.ScoringKeywords {
			if strings.Contains(text, kw) {
				r.Score += rerankKeywordBonus
			}
		}
		if n < rerankShortChars {
			r.Score += shortTextPenalty
		}
		if strings.Contains(text, "ultimate guide") || strings.Contains(text, "top 10") {
			r.Score += genericPenalty
		}
		if n > rerankLongChars {
			hits := 0
			for _, t := range terms {
				hits += strings.Count(text, t)
			}
			r.Score += float64(min(hits, rerankMaxTermHits))
			if strings.Contains(text, "specification") || strings.Contains(text, "data sheet") || strings.Contains(text, "parameter") {
				r.Score += rerankSpecBonus
			}
			if anyDigit.MatchString(text) {
				r.Score++
			}
		}
		out[i] = r
	}
	sortByScore(out)
	return out
}

// Assemble renders the standard-path context for mode. Every result
// appears exactly once, numbered by its position in results.
func (a *Assembler) Assemble(results []EnrichedResult, query string, mode Mode) string {
	if len(results) == 0 {
		return NoResultsContext
	}
	tpl, ok := templates[mode]
	if !ok {
		tpl = templates[ModeAuto]
	}

	byBucket := make(map[domains.Bucket][]int)
	for i, r := range results {
		b := a.reg.BucketOf(r.Domain)
		byBucket[b] = append(byBucket[b], i)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results (Mode: %s):\n\n", len(results), mode)
	for _, sec := range tpl.sections {
		var idx []int
		for _, b := range sec.buckets {
			idx = append(idx, byBucket[b]...)
		}
		if tpl.skipEmpty && len(idx) == 0 {
			continue
		}
		sb.WriteString(sec.header)
		sb.WriteString("\n")
		for _, i := range idx {
			a.writeSource(&sb, i+1, results[i], query)
		}
	}
	sb.WriteString("\nINSTRUCTION: ")
	sb.WriteString(tpl.instruction)
	return sb.String()
}

// AssembleGeneral renders the fast-path context: snippets only.
func (a *Assembler) AssembleGeneral(results []EnrichedResult) string {
	if len(results) == 0 {
		return NoResultsContext
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results for general query:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "SOURCE %d:\nTitle: %s\nDomain: %s\nURL: %s\nSnippet: %s\n\n", i+1, r.Title, r.Domain, r.URL, r.Content)
	}
	sb.WriteString("\nINSTRUCTION: ")
	sb.WriteString(generalInstruction)
	return sb.String()
}

func (a *Assembler) writeSource(sb *strings.Builder, n int, r EnrichedResult, query string) {
	fmt.Fprintf(sb, "SOURCE %d:\nTitle: %s\nDomain: %s\nURL: %s\n", n, r.Title, r.Domain, r.URL)
	if r.FullContent != "" {
		fmt.Fprintf(sb, "Content: %s\n", extractExcerpt(r.FullContent, query, a.excerptChars))
	} else {
		fmt.Fprintf(sb, "Snippet: %s\n", r.Content)
	}
	sb.WriteString("\n")
}
