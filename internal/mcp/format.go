package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/amanweb/internal/research"
)

// FormatResearch formats a research response as markdown.
func FormatResearch(question string, resp *research.Response) string {
	if resp == nil || len(resp.Results) == 0 {
		return fmt.Sprintf("No web results found for \"%s\"", question)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Web Research for \"%s\"\n\n", question)
	fmt.Fprintf(&sb, "Mode: `%s` | Profile: `%s` | %dms\n\n", resp.Mode, resp.Profile, resp.ElapsedMS)

	if len(resp.Queries) > 1 {
		sb.WriteString("**Queries:**\n")
		for _, q := range resp.Queries {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Found %d source", len(resp.Results))
	if len(resp.Results) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range resp.Results {
		formatSource(&sb, i+1, r)
	}

	if resp.FormattedContext != "" {
		fmt.Fprintf(&sb, "### Context\n\n```text\n%s\n```\n", resp.FormattedContext)
	}
	return sb.String()
}

// formatSource formats a single ranked source.
func formatSource(sb *strings.Builder, num int, r research.EnrichedResult) {
	fmt.Fprintf(sb, "### %d. %s (score: %.2f)\n", num, r.Title, r.Score)
	fmt.Fprintf(sb, "<%s>\n\n", r.URL)
	if r.Content != "" {
		fmt.Fprintf(sb, "> %s\n\n", strings.ReplaceAll(strings.TrimSpace(r.Content), "\n", " "))
	}
}

// FormatPage formats fetched page text as markdown.
func FormatPage(p FetchPageOutput) string {
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Sprintf("No text could be extracted from %s", p.URL)
	}

	var sb strings.Builder
	title := p.Title
	if title == "" {
		title = p.URL
	}
	fmt.Fprintf(&sb, "## %s\n\n", title)
	fmt.Fprintf(&sb, "Source: <%s>\n", p.URL)
	if p.Byline != "" {
		fmt.Fprintf(&sb, "By: %s\n", p.Byline)
	}
	if p.SiteName != "" {
		fmt.Fprintf(&sb, "Site: %s\n", p.SiteName)
	}
	sb.WriteString("\n")
	sb.WriteString(p.Text)
	sb.WriteString("\n")
	return sb.String()
}
