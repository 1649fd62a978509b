package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
)

// Article is the readable form of a single page.
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Text     string `json:"text"`
}

// Article downloads rawURL with the desktop profile and runs readability
// extraction on it. PDFs come back as plain text with no title. maxChars
// of 0 leaves the text untruncated.
func (f *Fetcher) Article(ctx context.Context, rawURL string, maxChars int) (*Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, amerrors.ValidationError(amerrors.ErrCodeInvalidInput, "url must be an absolute http(s) URL")
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	p, err := f.get(ctx, rawURL, desktopStrategy().Headers)
	if err != nil {
		return nil, amerrors.New(amerrors.ErrCodeFetchFailed, "failed to fetch "+rawURL, err)
	}
	if !p.ok() {
		return nil, amerrors.New(amerrors.ErrCodeFetchFailed,
			fmt.Sprintf("fetching %s returned status %d", rawURL, p.status), nil)
	}
	body := p.body

	if isPDF(p.contentType, rawURL) {
		text := f.extractPDF(rawURL, body)
		if text == "" {
			return nil, amerrors.New(amerrors.ErrCodeFetchFailed, "no text extracted from PDF "+rawURL, nil)
		}
		return &Article{URL: rawURL, Text: truncate(text, maxChars)}, nil
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil || strings.TrimSpace(parsed.TextContent) == "" {
		// Not an article; fall back to the plain visible text.
		text := ExtractHTMLText(string(body))
		if text == "" {
			return nil, amerrors.New(amerrors.ErrCodeFetchFailed, "no readable content at "+rawURL, err)
		}
		return &Article{URL: rawURL, Text: truncate(text, maxChars)}, nil
	}

	return &Article{
		URL:      rawURL,
		Title:    strings.TrimSpace(parsed.Title),
		Byline:   strings.TrimSpace(parsed.Byline),
		SiteName: strings.TrimSpace(parsed.SiteName),
		Excerpt:  strings.TrimSpace(parsed.Excerpt),
		Text:     truncate(collapseSpace(parsed.TextContent), maxChars),
	}, nil
}
