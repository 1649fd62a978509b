// Package searxng queries a self-hosted SearXNG instance through its JSON API.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/pkg/version"
)

const (
	searchPath    = "/search"
	unknownEngine = "unknown"
)

// Query is a single SearXNG search.
type Query struct {
	Q string
	// Engines is a comma-joined engine list; empty lets the backend choose.
	Engines string
	// TimeRange is day, week, month or year; empty or "none" sends nothing.
	TimeRange string
}

// Result is one search hit as returned by the backend.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Engine  string `json:"engine"`
}

type searchResponse struct {
	Query           string   `json:"query"`
	NumberOfResults float64  `json:"number_of_results"`
	Results         []Result `json:"results"`
}

// Client is a SearXNG JSON API client.
type Client struct {
	base string
	rc   *resty.Client
}

// New creates a client for the instance at baseURL.
// hc may be nil.
func New(baseURL string, hc *http.Client) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	var rc *resty.Client
	if hc != nil {
		rc = resty.NewWithClient(hc)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetHeader("User-Agent", version.UserAgent()).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{base: base, rc: rc}
}

// BaseURL returns the instance URL.
func (c *Client) BaseURL() string {
	return c.base
}

// Search runs one query with its own deadline.
// Any transport failure, non-2xx status or undecodable body is an error;
// the caller decides whether to try another engine set.
func (c *Client) Search(ctx context.Context, q Query, timeout time.Duration) ([]Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := c.rc.R().
		SetContext(ctx).
		SetQueryParam("q", q.Q).
		SetQueryParam("format", "json")
	if q.Engines != "" {
		req.SetQueryParam("engines", q.Engines)
	}
	if q.TimeRange != "" && q.TimeRange != "none" {
		req.SetQueryParam("time_range", q.TimeRange)
	}

	resp, err := req.Get(searchPath)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, amerrors.New(amerrors.ErrCodeNetworkTimeout, "SearXNG request timed out", err)
		}
		return nil, amerrors.SearchBackendError("failed to query SearXNG at "+c.base, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, amerrors.SearchBackendError(
			fmt.Sprintf("SearXNG returned status %d", resp.StatusCode()), nil).
			WithDetail("status", fmt.Sprint(resp.StatusCode()))
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, amerrors.SearchBackendError("SearXNG returned a non-JSON body", err)
	}

	results := make([]Result, 0, len(body.Results))
	for _, r := range body.Results {
		if r.Engine == "" {
			r.Engine = unknownEngine
		}
		results = append(results, r)
	}
	return results, nil
}

// Ping checks that the instance answers a JSON search.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Search(ctx, Query{Q: "ping"}, 5*time.Second)
	return err
}
