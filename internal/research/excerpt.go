package research

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptChars is the excerpt budget per source.
const DefaultExcerptChars = 800

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s|$)`)
	nonWord         = regexp.MustCompile(`[^\w\s]`)
	spaceRun        = regexp.MustCompile(`\s+`)
)

var excerptIgnoreWords = map[string]bool{
	"the": true, "is": true, "at": true, "which": true, "on": true, "and": true,
	"a": true, "an": true, "in": true, "to": true, "of": true, "for": true,
	"it": true, "with": true, "as": true, "by": true,
}

type scoredSentence struct {
	text  string
	score float64
	index int
}

// excerptTerms lower-cases query, removes punctuation and drops short and
// stop words.
func excerptTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(nonWord.ReplaceAllString(strings.ToLower(query), "")) {
		if utf8.RuneCountInString(w) > 2 && !excerptIgnoreWords[w] {
			terms = append(terms, w)
		}
	}
	return terms
}

// extractExcerpt picks the sentences of content most relevant to query,
// up to maxChars, and returns them in document order. Each sentence scores
// one point per distinct term it contains, plus 0.5 for the first three.
// Selection is greedy and stops at the first sentence that does not fit.
func extractExcerpt(content, query string, maxChars int) string {
	if content == "" {
		return ""
	}
	clean := spaceRun.ReplaceAllString(content, " ")
	sentences := sentencePattern.FindAllString(clean, -1)
	if len(sentences) == 0 {
		sentences = []string{clean}
	}

	terms := excerptTerms(query)
	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		lower := strings.ToLower(s)
		var score float64
		for _, t := range terms {
			if strings.Contains(lower, t) {
				score++
			}
		}
		if i < 3 {
			score += 0.5
		}
		scored[i] = scoredSentence{text: s, score: score, index: i}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	var selected []scoredSentence
	length := 0
	for _, s := range scored {
		n := utf8.RuneCountInString(s.text)
		if length+n > maxChars {
			break
		}
		selected = append(selected, s)
		length += n
	}
	if len(selected) == 0 {
		return truncateRunes(clean, maxChars) + "..."
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].index < selected[j].index })
	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = strings.TrimSpace(s.text)
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
