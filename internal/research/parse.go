package research

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/amanweb/internal/domains"
)

// One parser per model call site. Each one owns the text contract of its
// prompt and never fails: unusable output maps to the documented default.

// parseCategory maps a classifier reply to a category by substring, in the
// order battery, automation, semiconductor. Anything else is general.
func parseCategory(reply string) domains.Category {
	text := strings.ToLower(strings.TrimSpace(reply))
	for _, c := range []domains.Category{
		domains.CategoryBattery,
		domains.CategoryAutomation,
		domains.CategorySemiconductor,
	} {
		if strings.Contains(text, string(c)) {
			return c
		}
	}
	return domains.CategoryGeneral
}

var queryEnumeration = regexp.MustCompile(`^[\d\-\*\.]+\s*`)

// parseGeneratedQueries reads one query per line, strips list markers and
// keeps at most two lines longer than 5 and shorter than 100 characters.
func parseGeneratedQueries(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		q := strings.TrimSpace(queryEnumeration.ReplaceAllString(line, ""))
		n := utf8.RuneCountInString(q)
		if n <= 5 || n >= 100 {
			continue
		}
		out = append(out, q)
		if len(out) == 2 {
			break
		}
	}
	return out
}

const sufficientToken = "SUFFICIENT"

var gapEnumeration = regexp.MustCompile(`^[-\d.]+\s*`)

// parseGapResponse returns sufficient when the reply contains SUFFICIENT
// anywhere or yields no usable line; otherwise up to two follow-up queries.
func parseGapResponse(reply string) (bool, []string) {
	if strings.Contains(reply, sufficientToken) {
		return true, nil
	}
	var queries []string
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		q := strings.TrimSpace(gapEnumeration.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(q) <= 5 {
			continue
		}
		queries = append(queries, q)
		if len(queries) == 2 {
			break
		}
	}
	if len(queries) == 0 {
		return true, nil
	}
	return false, queries
}
