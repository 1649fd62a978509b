package ui

import (
	"sync"
	"time"
)

// ProgressTracker manages progress state across research stages.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu         sync.RWMutex
	stage      Stage
	detail     string
	started    bool
	startTime  time.Time
	stageStart time.Time
	timings    map[Stage]time.Duration
	visited    []Stage
	errors     []ErrorEvent
	warnings   []ErrorEvent
	now        func() time.Time
}

// ProgressStats contains a snapshot of current progress.
type ProgressStats struct {
	Stage   Stage
	Detail  string
	Started bool
	// Progress is the fraction of pipeline stages reached, 0 to 1.
	Progress   float64
	Elapsed    time.Duration
	ErrorCount int
	WarnCount  int
	// Visited lists stages in the order they were entered. The general
	// fast path skips most of the pipeline.
	Visited []Stage
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker() *ProgressTracker {
	return newProgressTracker(time.Now)
}

func newProgressTracker(now func() time.Time) *ProgressTracker {
	t := now()
	return &ProgressTracker{
		startTime:  t,
		stageStart: t,
		timings:    make(map[Stage]time.Duration),
		now:        now,
	}
}

// SetStage transitions to a new stage, closing the timing of the previous one.
func (p *ProgressTracker) SetStage(stage Stage, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.now()
	if p.started {
		p.timings[p.stage] += t.Sub(p.stageStart)
	}
	if !p.started || stage != p.stage {
		p.visited = append(p.visited, stage)
	}
	p.started = true
	p.stage = stage
	p.detail = detail
	p.stageStart = t
}

// Finish closes the running stage and moves to StageComplete.
func (p *ProgressTracker) Finish() {
	p.SetStage(StageComplete, "")
}

// AddError records an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings = append(p.warnings, event)
	} else {
		p.errors = append(p.errors, event)
	}
}

// Timings returns the time spent in each finished stage.
func (p *ProgressTracker) Timings() map[Stage]time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[Stage]time.Duration, len(p.timings))
	for k, v := range p.timings {
		out[k] = v
	}
	return out
}

// Stats returns a snapshot of the current progress.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressStats{
		Stage:      p.stage,
		Detail:     p.detail,
		Started:    p.started,
		Progress:   p.progressLocked(),
		Elapsed:    p.now().Sub(p.startTime),
		ErrorCount: len(p.errors),
		WarnCount:  len(p.warnings),
		Visited:    append([]Stage(nil), p.visited...),
	}
}

// progressLocked must be called with mu held.
func (p *ProgressTracker) progressLocked() float64 {
	if !p.started {
		return 0
	}
	if p.stage == StageComplete {
		return 1
	}
	return float64(int(p.stage)+1) / float64(len(pipelineStages))
}
