package fetch

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// skippedElements are dropped with their whole subtree on the desktop path.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style.*?</style>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// ExtractHTMLText returns the visible text of an HTML document with
// script, style, nav, header and footer subtrees removed and whitespace
// collapsed.
func ExtractHTMLText(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return StripTags(page)
	}
	var sb strings.Builder
	walkText(doc, &sb)
	return collapseSpace(sb.String())
}

func walkText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		if skippedElements[strings.ToLower(n.Data)] {
			return
		}
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb)
	}
}

// StripTags is the lightweight mobile extraction: script and style blocks
// are removed, every other tag becomes a space.
func StripTags(page string) string {
	page = scriptBlock.ReplaceAllString(page, "")
	page = styleBlock.ReplaceAllString(page, "")
	page = anyTag.ReplaceAllString(page, " ")
	return collapseSpace(html.UnescapeString(page))
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// truncate cuts s to at most max characters without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
