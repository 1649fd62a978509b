package research

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/metrics"
	"github.com/Aman-CERP/amanweb/internal/searxng"
)

// DefaultEngines is used when a caller supplies no engine set.
const DefaultEngines = "google,bing,arxiv,github,stack_overflow"

// Engine-ladder timeouts.
const (
	DefaultPrimaryTimeout  = 6 * time.Second
	DefaultFallbackTimeout = 15 * time.Second
)

// engineStrategy is one rung of the engine ladder. An empty engines value
// lets the backend use its own default set.
type engineStrategy struct {
	name    string
	engines string
	timeout time.Duration
}

// Executor runs a query through the engine ladder.
type Executor struct {
	search          Searcher
	reg             *domains.Registry
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
}

// NewExecutor creates an executor. Zero timeouts use the defaults.
func NewExecutor(search Searcher, reg *domains.Registry, primary, fallback time.Duration) *Executor {
	if primary <= 0 {
		primary = DefaultPrimaryTimeout
	}
	if fallback <= 0 {
		fallback = DefaultFallbackTimeout
	}
	return &Executor{search: search, reg: reg, primaryTimeout: primary, fallbackTimeout: fallback}
}

// engineLadder orders the strategies: the caller's set on the short
// timeout, then brave, duckduckgo and the backend default on the long one.
// An empty caller set skips the first rung; a caller set equal to a later
// rung is not tried twice.
func (e *Executor) engineLadder(engines string) []engineStrategy {
	var ladder []engineStrategy
	if engines != "" {
		ladder = append(ladder, engineStrategy{name: "primary", engines: engines, timeout: e.primaryTimeout})
	}
	for _, s := range []engineStrategy{
		{name: "brave", engines: "brave", timeout: e.fallbackTimeout},
		{name: "duckduckgo", engines: "duckduckgo", timeout: e.fallbackTimeout},
		{name: "default", engines: "", timeout: e.fallbackTimeout},
	} {
		if s.engines != "" && s.engines == engines {
			continue
		}
		ladder = append(ladder, s)
	}
	return ladder
}

// Execute returns the blocklist-filtered results of the first strategy that
// yields at least one. It never fails: when every strategy comes back empty
// or errors, the result is an empty slice.
func (e *Executor) Execute(ctx context.Context, query, engines, timeRange string) []SearchResult {
	if engines == "" {
		engines = DefaultEngines
	}

	for _, s := range e.engineLadder(engines) {
		if ctx.Err() != nil {
			break
		}
		raw, err := e.search.Search(ctx, searxng.Query{Q: query, Engines: s.engines, TimeRange: timeRange}, s.timeout)
		if err != nil {
			metrics.RecordEngineAttempt(s.name, "error")
			slog.Debug("engine_strategy_failed",
				slog.String("strategy", s.name),
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}

		results := make([]SearchResult, 0, len(raw))
		for _, r := range raw {
			if e.reg.IsBlocked(domains.ExtractDomain(r.URL)) {
				continue
			}
			results = append(results, SearchResult{Title: r.Title, URL: r.URL, Content: r.Content, Engine: r.Engine})
		}
		if len(results) > 0 {
			metrics.RecordEngineAttempt(s.name, "ok")
			slog.Debug("engine_strategy_ok",
				slog.String("strategy", s.name),
				slog.Int("results", len(results)),
				slog.Int("blocked", len(raw)-len(results)))
			return results
		}
		metrics.RecordEngineAttempt(s.name, "empty")
	}

	slog.Warn("all_engine_strategies_failed", slog.String("query", query))
	return []SearchResult{}
}
