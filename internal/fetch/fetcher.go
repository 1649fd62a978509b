// Package fetch retrieves page text for search results.
//
// A fetch walks an ordered strategy list: the desktop browser profile
// first, then a lighter mobile profile when the desktop attempt is refused,
// looks empty, or fails in transport.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/metrics"
)

// Defaults match the limits applied to research results.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxHTMLChars   = 3000
	DefaultMaxMobileChars = 5000
	DefaultMaxPDFChars    = 5000

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20

	// minHTMLBytes is the size below which a desktop page is treated as empty.
	minHTMLBytes = 500
)

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36"
	jsWallMarker     = "JavaScript is needed"
)

// Config configures a Fetcher.
type Config struct {
	Timeout        time.Duration
	MaxHTMLChars   int
	MaxMobileChars int
	MaxPDFChars    int

	// PDF extracts text from PDF bodies. Nil disables PDF support.
	PDF PDFExtractor

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// DefaultConfig returns the standard limits with the built-in PDF extractor.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		MaxHTMLChars:   DefaultMaxHTMLChars,
		MaxMobileChars: DefaultMaxMobileChars,
		MaxPDFChars:    DefaultMaxPDFChars,
		PDF:            NewPDFExtractor(),
	}
}

// verdict is what a strategy decided about a URL.
type verdict int

const (
	// verdictDone ends the walk; the text may be empty.
	verdictDone verdict = iota
	// verdictNext hands the URL to the next strategy.
	verdictNext
)

// Strategy is one step of the fetch ladder.
type Strategy struct {
	Name    string
	Headers map[string]string
	attempt func(ctx context.Context, f *Fetcher, s Strategy, rawURL string) (string, verdict)
}

// Fetcher retrieves and extracts page text. Safe for concurrent use.
type Fetcher struct {
	cfg        Config
	client     *resty.Client
	strategies []Strategy
}

// page is a response whose 2xx body was read under maxBodyBytes.
type page struct {
	status      int
	contentType string
	body        []byte
}

func (p *page) ok() bool {
	return p.status >= 200 && p.status <= 299
}

// New creates a Fetcher, filling zero limits with defaults.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxHTMLChars <= 0 {
		cfg.MaxHTMLChars = DefaultMaxHTMLChars
	}
	if cfg.MaxMobileChars <= 0 {
		cfg.MaxMobileChars = DefaultMaxMobileChars
	}
	if cfg.MaxPDFChars <= 0 {
		cfg.MaxPDFChars = DefaultMaxPDFChars
	}
	var client *resty.Client
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetRetryCount(0)
	return &Fetcher{
		cfg:        cfg,
		client:     client,
		strategies: []Strategy{desktopStrategy(), mobileStrategy()},
	}
}

// Strategies returns the names of the fetch ladder in order.
func (f *Fetcher) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.Name
	}
	return names
}

// Fetch returns extracted page text. When every strategy gives up it
// returns an ERR_306_FETCH_FAILED error; callers in the research pipeline
// fall back to the search snippet.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	for _, s := range f.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, v := s.attempt(ctx, f, s, rawURL)
		if v == verdictNext {
			metrics.RecordFetch(s.Name, "fallback")
			continue
		}
		if text == "" {
			metrics.RecordFetch(s.Name, "empty")
			break
		}
		metrics.RecordFetch(s.Name, "ok")
		return text, nil
	}
	return "", amerrors.New(amerrors.ErrCodeFetchFailed, "no content extracted from "+rawURL, nil).
		WithDetail("strategies", strings.Join(f.Strategies(), ","))
}

func desktopStrategy() Strategy {
	return Strategy{
		Name: "desktop",
		Headers: map[string]string{
			"User-Agent":      desktopUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         "https://www.google.com/",
		},
		attempt: attemptDesktop,
	}
}

func mobileStrategy() Strategy {
	return Strategy{
		Name: "mobile",
		Headers: map[string]string{
			"User-Agent": mobileUserAgent,
			"Accept":     "text/html",
		},
		attempt: attemptMobile,
	}
}

func attemptDesktop(ctx context.Context, f *Fetcher, s Strategy, rawURL string) (string, verdict) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	p, err := f.get(ctx, rawURL, s.Headers)
	if err != nil {
		slog.Debug("fetch_transport_error", slog.String("url", rawURL), slog.String("strategy", s.Name), slog.String("error", err.Error()))
		return "", verdictNext
	}
	if p.status == http.StatusUnauthorized || p.status == http.StatusForbidden {
		slog.Debug("fetch_access_denied", slog.String("url", rawURL), slog.Int("status", p.status))
		return "", verdictNext
	}
	if !p.ok() {
		return "", verdictDone
	}

	if isPDF(p.contentType, rawURL) {
		return f.extractPDF(rawURL, p.body), verdictDone
	}

	text := string(p.body)
	if len(text) < minHTMLBytes || strings.Contains(text, jsWallMarker) {
		return "", verdictNext
	}
	return truncate(ExtractHTMLText(text), f.cfg.MaxHTMLChars), verdictDone
}

func attemptMobile(ctx context.Context, f *Fetcher, s Strategy, rawURL string) (string, verdict) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	p, err := f.get(ctx, rawURL, s.Headers)
	if err != nil || !p.ok() {
		return "", verdictDone
	}
	return truncate(StripTags(string(p.body)), f.cfg.MaxMobileChars), verdictDone
}

func (f *Fetcher) extractPDF(rawURL string, body []byte) string {
	if f.cfg.PDF == nil {
		slog.Debug("fetch_pdf_skipped", slog.String("url", rawURL))
		return ""
	}
	text, err := f.cfg.PDF.ExtractText(body)
	if err != nil {
		slog.Debug("fetch_pdf_failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return ""
	}
	return truncate(strings.TrimSpace(text), f.cfg.MaxPDFChars)
}

// get issues one GET with headers. The body is only read for 2xx
// responses.
func (f *Fetcher) get(ctx context.Context, rawURL string, headers map[string]string) (*page, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, amerrors.New(amerrors.ErrCodeNetworkTimeout, "page fetch timed out", err)
		}
		return nil, err
	}
	raw := resp.RawBody()
	if raw != nil {
		defer func() { _ = raw.Close() }()
	}

	p := &page{status: resp.StatusCode(), contentType: resp.Header().Get("Content-Type")}
	if !p.ok() || raw == nil {
		return p, nil
	}
	body, err := io.ReadAll(io.LimitReader(raw, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	p.body = body
	return p, nil
}

func isPDF(contentType, rawURL string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf") || strings.HasSuffix(rawURL, ".pdf")
}
