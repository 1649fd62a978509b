package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	tracker *ProgressTracker
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		tracker: NewProgressTracker(),
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
// Format: [STAGE] detail
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(event.Stage, event.Detail)
	if event.Detail != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), event.Detail)
	} else {
		_, _ = fmt.Fprintf(r.out, "[%s]\n", event.Stage.Icon())
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}
	_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.Finish()

	_, _ = fmt.Fprintf(r.out, "Complete: %d %s from %d %s in %s",
		stats.Results, plural(stats.Results, "source", "sources"),
		stats.Queries, plural(stats.Queries, "query", "queries"),
		stats.Duration.Round(100*time.Millisecond))
	if stats.Mode != "" {
		_, _ = fmt.Fprintf(r.out, " (mode %s, profile %s)", stats.Mode, stats.Profile)
	}
	_, _ = fmt.Fprintln(r.out)
	if line := stageTimings(r.tracker); line != "" {
		_, _ = fmt.Fprintf(r.out, "Stages: %s\n", line)
	}
}

// stageTimings lists the time spent per visited stage, in visiting order.
func stageTimings(p *ProgressTracker) string {
	timings := p.Timings()
	var parts []string
	for _, stage := range p.Stats().Visited {
		if stage == StageComplete {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s",
			strings.ToLower(stage.String()), timings[stage].Round(10*time.Millisecond)))
	}
	return strings.Join(parts, ", ")
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
