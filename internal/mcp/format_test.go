package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/amanweb/internal/research"
)

func TestFormatResearch_Basic(t *testing.T) {
	// Given: a response with two sources
	resp := sampleResponse()

	// When: formatting
	markdown := FormatResearch("sei layer growth", resp)

	// Then: header, queries, sources and context appear in order
	assert.Contains(t, markdown, "Mode: `auto` | Profile: `battery` | 1234ms")
	assert.Contains(t, markdown, "**Queries:**\n- sei layer growth\n- sei layer growth mechanism anode\n")
	assert.Contains(t, markdown, "<https://www.nature.com/articles/sei>")
	assert.Contains(t, markdown, "> Solid electrolyte interphase growth over cycling.")
	assert.Contains(t, markdown, "### 2. sei-model (score: 7.00)")
	assert.Contains(t, markdown, "### Context\n\n```text\n=== ACADEMIC & RESEARCH ===")
}

func TestFormatResearch_SingleQueryAndSource(t *testing.T) {
	// Given: a fast-path response with one query
	resp := &research.Response{
		Queries: []string{"weather"},
		Results: []research.EnrichedResult{
			{SearchResult: research.SearchResult{Title: "Forecast", URL: "https://example.com"}, Score: 1},
		},
		Mode: research.ModeGeneral,
	}

	// When: formatting
	markdown := FormatResearch("weather", resp)

	// Then: singular wording and no query list
	assert.Contains(t, markdown, "Found 1 source\n")
	assert.NotContains(t, markdown, "**Queries:**")
	assert.NotContains(t, markdown, "### Context")
}

func TestFormatResearch_Empty(t *testing.T) {
	assert.Equal(t, `No web results found for "q"`, FormatResearch("q", nil))
	assert.Equal(t, `No web results found for "q"`, FormatResearch("q", &research.Response{}))
}

func TestFormatPage(t *testing.T) {
	tests := []struct {
		name     string
		page     FetchPageOutput
		contains []string
		excludes []string
	}{
		{
			name:     "raw page uses url as title",
			page:     FetchPageOutput{URL: "https://example.com/doc.pdf", Text: "pdf text"},
			contains: []string{"## https://example.com/doc.pdf\n", "pdf text\n"},
			excludes: []string{"By:", "Site:"},
		},
		{
			name:     "article metadata",
			page:     FetchPageOutput{URL: "https://example.com", Title: "T", Byline: "B", SiteName: "S", Text: "body"},
			contains: []string{"## T\n", "By: B\n", "Site: S\n"},
		},
		{
			name:     "blank text",
			page:     FetchPageOutput{URL: "https://example.com", Text: "  "},
			contains: []string{"No text could be extracted from https://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatPage(tt.page)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
