package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/amanweb/internal/research"
)

const (
	defaultResultWidth = 100
	snippetIndent      = 4
)

// ResultsRenderer prints a research response for a human reader.
type ResultsRenderer struct {
	out    io.Writer
	styles Styles
	width  int
}

// NewResultsRenderer creates a results renderer. Width <= 0 uses 100 columns.
func NewResultsRenderer(out io.Writer, noColor bool, width int) *ResultsRenderer {
	if width <= 0 {
		width = defaultResultWidth
	}
	return &ResultsRenderer{out: out, styles: GetStyles(noColor), width: width}
}

// Render prints the summary line, then one numbered block per result.
func (r *ResultsRenderer) Render(question string, resp *research.Response) {
	if resp == nil || len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Warning.Render(fmt.Sprintf("No results found for %q", question)))
		return
	}

	summary := fmt.Sprintf("Mode %s · Profile %s · %d %s · %s",
		resp.Mode, resp.Profile,
		len(resp.Queries), plural(len(resp.Queries), "query", "queries"),
		resp.Elapsed.Round(100*time.Millisecond))
	_, _ = fmt.Fprintln(r.out, r.styles.Label.Render(summary))
	_, _ = fmt.Fprintln(r.out)

	wrap := lipgloss.NewStyle().Width(r.width - snippetIndent)
	indent := strings.Repeat(" ", snippetIndent)
	for i, res := range resp.Results {
		_, _ = fmt.Fprintf(r.out, "%2d. %s  %s\n", i+1,
			r.styles.Title.Render(res.Title),
			r.styles.Score.Render(fmt.Sprintf("score %.1f", res.Score)))
		_, _ = fmt.Fprintf(r.out, "%s%s\n", indent, r.styles.Link.Render(res.URL))

		text := res.Content
		if res.FullContent != "" {
			text = truncate(strings.Join(strings.Fields(res.FullContent), " "), 300)
		}
		if text = strings.TrimSpace(text); text != "" {
			for _, line := range strings.Split(wrap.Render(text), "\n") {
				_, _ = fmt.Fprintf(r.out, "%s%s\n", indent, strings.TrimRight(line, " "))
			}
		}
		_, _ = fmt.Fprintln(r.out)
	}
}

// RenderQueries prints the issued queries, original question first.
func (r *ResultsRenderer) RenderQueries(queries []string) {
	if len(queries) <= 1 {
		return
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render("Queries"))
	for _, q := range queries {
		_, _ = fmt.Fprintf(r.out, "  • %s\n", q)
	}
	_, _ = fmt.Fprintln(r.out)
}
