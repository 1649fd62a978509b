package research

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/metrics"
)

// Pipeline bounds.
const (
	maxIterations          = 2
	maxQueriesPerIteration = 3
	strictReplaceAbove     = 10
	strictMinResults       = 3
	defaultParallelism     = 4
)

// Stage names reported to a ProgressFunc.
const (
	StageClassify = "classify"
	StageQueries  = "queries"
	StageSearch   = "search"
	StageEvaluate = "evaluate"
	StageRank     = "rank"
	StageFetch    = "fetch"
	StageAssemble = "assemble"
)

// Progress describes a pipeline stage that just started.
type Progress struct {
	Stage  string
	Detail string
}

// ProgressFunc receives stage notifications. It is called from the
// goroutine running Search and must not block.
type ProgressFunc func(Progress)

// Config configures a Researcher.
type Config struct {
	// DefaultModel is used when a Request names no model.
	DefaultModel    string
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	// Summarize replaces fetched text with a model summary before excerpting.
	Summarize bool
	// Parallelism bounds concurrent searches and fetches per request.
	Parallelism int
}

// Option configures a Researcher.
type Option func(*Researcher)

// WithProgress registers a stage observer.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Researcher) { r.progress = fn }
}

// WithClock overrides the clock used for timely year augmentation.
func WithClock(now func() time.Time) Option {
	return func(r *Researcher) { r.now = now }
}

// Researcher runs the research pipeline. It holds no per-request state and
// is safe for concurrent use.
type Researcher struct {
	cfg        Config
	reg        *domains.Registry
	fetcher    PageFetcher
	classifier *Classifier
	querygen   *QueryGenerator
	executor   *Executor
	ranker     *Ranker
	gap        *GapEvaluator
	assembler  *Assembler
	summarizer *Summarizer
	progress   ProgressFunc
	now        func() time.Time
}

// New wires a Researcher. gen and fetcher may be nil: without a generator
// every model-backed stage takes its fallback, without a fetcher results
// keep their snippets.
func New(reg *domains.Registry, gen Generator, search Searcher, fetcher PageFetcher, cfg Config, opts ...Option) *Researcher {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	r := &Researcher{
		cfg:        cfg,
		reg:        reg,
		fetcher:    fetcher,
		classifier: NewClassifier(gen, reg),
		querygen:   NewQueryGenerator(gen, reg),
		executor:   NewExecutor(search, reg, cfg.PrimaryTimeout, cfg.FallbackTimeout),
		ranker:     NewRanker(reg),
		gap:        NewGapEvaluator(gen),
		assembler:  NewAssembler(reg),
		now:        time.Now,
	}
	if cfg.Summarize && gen != nil {
		r.summarizer = NewSummarizer(gen)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the domain registry in use.
func (r *Researcher) Registry() *domains.Registry {
	return r.reg
}

// Search researches req.Question. The only error is a validation error for
// a malformed request; every downstream failure degrades the result.
func (r *Researcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req, err := req.Normalize(r.cfg.DefaultModel)
	if err != nil {
		metrics.RecordResearch(string(req.Mode), "invalid", "error", 0, 0)
		return nil, err
	}

	var resp *Response
	path := "standard"
	if req.Mode == ModeGeneral {
		path = "fast"
		resp = r.fastPath(ctx, req)
	} else {
		resp = r.standardPath(ctx, req)
	}

	resp.Mode = req.Mode
	resp.Elapsed = time.Since(start)
	resp.ElapsedMS = resp.Elapsed.Milliseconds()

	status := "ok"
	if len(resp.Results) == 0 {
		status = "empty"
	}
	metrics.RecordResearch(string(req.Mode), path, status, resp.Elapsed.Seconds(), len(resp.Results))
	slog.Info("research_complete",
		slog.String("mode", string(req.Mode)),
		slog.String("path", path),
		slog.String("profile", string(resp.Profile)),
		slog.Int("queries", len(resp.Queries)),
		slog.Int("results", len(resp.Results)),
		slog.Duration("duration", resp.Elapsed))
	return resp, nil
}

// fastPath answers general-mode questions from snippets with one search
// and no model calls.
func (r *Researcher) fastPath(ctx context.Context, req Request) *Response {
	profile, ok := r.reg.ModeProfile(string(ModeGeneral))
	if !ok {
		profile = r.reg.CategoryProfile(domains.CategoryGeneral)
	}
	_, timeRange := detectTimely(req.Question)

	r.report(StageSearch, req.Question)
	raw := r.executor.Execute(ctx, req.Question, profile.Engines, timeRange)

	r.report(StageRank, "")
	ranked := capResults(dedupByURL(r.ranker.RankGeneral(raw, req.Question)), req.MaxResults)

	return &Response{
		Queries:          []string{req.Question},
		Results:          ranked,
		FormattedContext: r.assembler.AssembleGeneral(ranked),
		Profile:          domains.CategoryGeneral,
	}
}

func (r *Researcher) standardPath(ctx context.Context, req Request) *Response {
	timely, timeRange := detectTimely(req.Question)

	r.report(StageClassify, string(req.Mode))
	profile := r.classifier.Classify(ctx, req.Question, req.Mode, req.Model)

	r.report(StageQueries, string(profile.Category))
	queries := r.querygen.Generate(ctx, req.Question, req.Model)
	if q, ok := timelyQuery(req.Question, r.now()); ok {
		// The augmented query goes right after the original so the
		// per-iteration cap never drops it.
		queries = append([]string{queries[0], q}, queries[1:]...)
	}
	slog.Debug("research_plan",
		slog.String("profile", string(profile.Category)),
		slog.Bool("timely", timely),
		slog.String("time_range", timeRange),
		slog.Any("queries", queries))

	issued := newQueryLog(req.Question)
	var pool []SearchResult
	for i := 0; i < maxIterations && len(queries) > 0; i++ {
		if len(queries) > maxQueriesPerIteration {
			queries = queries[:maxQueriesPerIteration]
		}
		issued.add(queries...)

		r.report(StageSearch, queries[0])
		pool = append(pool, r.searchAll(ctx, queries, profile.Engines, timeRange)...)

		if i == maxIterations-1 || ctx.Err() != nil {
			break
		}

		r.report(StageEvaluate, "")
		lenient := r.ranker.Rank(pool, req.Question, profile, false)
		if req.Mode == ModeAuto {
			sufficient, next := r.gap.Evaluate(ctx, req.Question, lenient, req.Model)
			if sufficient {
				break
			}
			queries = next
		} else {
			if countHighQuality(lenient) >= highQualityCount {
				break
			}
			queries = []string{req.Question + " detailed"}
		}
	}

	if len(pool) == 0 && ctx.Err() == nil {
		slog.Warn("research_zero_results_retry", slog.String("question", req.Question))
		issued.add(req.Question)
		pool = r.executor.Execute(ctx, req.Question, profile.Engines, timeRange)
	}

	r.report(StageRank, "")
	pool = r.ranker.FilterByMode(pool, req.Mode)
	ranked := dedupByURL(r.ranker.Rank(pool, req.Question, profile, false))
	if len(ranked) > strictReplaceAbove {
		if strict := r.ranker.Rank(pool, req.Question, profile, true); len(strict) >= strictMinResults {
			ranked = dedupByURL(strict)
		}
	}
	if len(ranked) == 0 && len(pool) > 0 {
		ranked = r.ranker.Desperation(pool)
	}
	top := capResults(ranked, req.MaxResults)

	if req.FetchContent && r.fetcher != nil && len(top) > 0 {
		r.report(StageFetch, "")
		top = r.fetchAll(ctx, top, req)
	}

	r.report(StageAssemble, "")
	final := r.assembler.ReRank(top, req.Question, profile)
	return &Response{
		Queries:          issued.list(),
		Results:          final,
		FormattedContext: r.assembler.Assemble(final, req.Question, req.Mode),
		Profile:          profile.Category,
	}
}

// searchAll runs queries concurrently and waits for all of them. Results
// are concatenated in query order.
func (r *Researcher) searchAll(ctx context.Context, queries []string, engines, timeRange string) []SearchResult {
	perQuery := make([][]SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = r.executor.Execute(gctx, q, engines, timeRange)
			return nil
		})
	}
	_ = g.Wait()

	var out []SearchResult
	for _, rs := range perQuery {
		out = append(out, rs...)
	}
	return out
}

// fetchAll fills FullContent for each result concurrently. A failed fetch
// leaves that result's FullContent empty.
func (r *Researcher) fetchAll(ctx context.Context, results []EnrichedResult, req Request) []EnrichedResult {
	out := make([]EnrichedResult, len(results))
	copy(out, results)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i := range out {
		g.Go(func() error {
			text, err := r.fetcher.Fetch(gctx, out[i].URL)
			if err != nil {
				slog.Debug("fetch_failed", slog.String("url", out[i].URL), slog.String("error", err.Error()))
				return nil
			}
			if r.summarizer != nil {
				text = r.summarizer.Summarize(gctx, text, req.Question, req.Model)
			}
			out[i].FullContent = text
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Researcher) report(stage, detail string) {
	if r.progress != nil {
		r.progress(Progress{Stage: stage, Detail: detail})
	}
}

// queryLog records issued queries in order without duplicates.
type queryLog struct {
	seen  map[string]bool
	order []string
}

func newQueryLog(first string) *queryLog {
	l := &queryLog{seen: make(map[string]bool)}
	l.add(first)
	return l
}

func (l *queryLog) add(qs ...string) {
	for _, q := range qs {
		if !l.seen[q] {
			l.seen[q] = true
			l.order = append(l.order, q)
		}
	}
}

func (l *queryLog) list() []string {
	return l.order
}
