package research

import (
	"fmt"
	"regexp"
	"time"
)

// TimeRange values understood by SearXNG, plus "none".
const (
	TimeRangeNone  = "none"
	TimeRangeDay   = "day"
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
)

var timelyPatterns = []struct {
	re        *regexp.Regexp
	timeRange string
}{
	{regexp.MustCompile(`(?i)\b(today|right now|current|latest|newest)\b`), TimeRangeDay},
	{regexp.MustCompile(`(?i)\b(this week|past week)\b`), TimeRangeWeek},
	{regexp.MustCompile(`(?i)\b(this month|recent)\b`), TimeRangeMonth},
	{regexp.MustCompile(`(?i)\b(2025|2026|forecast|trend)\b`), TimeRangeYear},
}

var explicitYear = regexp.MustCompile(`\b202\d\b`)

// detectTimely reports whether question asks about recent events and the
// time range to search. The first matching pattern wins.
func detectTimely(question string) (bool, string) {
	for _, p := range timelyPatterns {
		if p.re.MatchString(question) {
			return true, p.timeRange
		}
	}
	return false, TimeRangeNone
}

// timelyQuery returns "<question> <year>" for a timely question that names
// no year of its own.
func timelyQuery(question string, now time.Time) (string, bool) {
	if timely, _ := detectTimely(question); !timely || explicitYear.MatchString(question) {
		return "", false
	}
	return fmt.Sprintf("%s %d", question, now.Year()), true
}
