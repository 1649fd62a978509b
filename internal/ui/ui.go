// Package ui provides terminal UI components for research progress, results
// and service status.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/amanweb/internal/research"
)

// Stage represents a research pipeline stage.
type Stage int

const (
	StageClassify Stage = iota
	StageQueries
	StageSearch
	StageEvaluate
	StageRank
	StageFetch
	StageAssemble
	// StageComplete indicates the research call returned.
	StageComplete
)

// pipelineStages lists the stages shown in the stage bar, in order.
var pipelineStages = []Stage{StageClassify, StageQueries, StageSearch, StageEvaluate, StageRank, StageFetch, StageAssemble}

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageClassify:
		return "Classify"
	case StageQueries:
		return "Queries"
	case StageSearch:
		return "Search"
	case StageEvaluate:
		return "Evaluate"
	case StageRank:
		return "Rank"
	case StageFetch:
		return "Fetch"
	case StageAssemble:
		return "Assemble"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage icon for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageClassify:
		return "CLASSIFY"
	case StageQueries:
		return "QUERIES"
	case StageSearch:
		return "SEARCH"
	case StageEvaluate:
		return "EVAL"
	case StageRank:
		return "RANK"
	case StageFetch:
		return "FETCH"
	case StageAssemble:
		return "ASSEMBLE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ParseStage maps a pipeline stage name to a Stage.
func ParseStage(name string) (Stage, bool) {
	switch name {
	case research.StageClassify:
		return StageClassify, true
	case research.StageQueries:
		return StageQueries, true
	case research.StageSearch:
		return StageSearch, true
	case research.StageEvaluate:
		return StageEvaluate, true
	case research.StageRank:
		return StageRank, true
	case research.StageFetch:
		return StageFetch, true
	case research.StageAssemble:
		return StageAssemble, true
	default:
		return 0, false
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage  Stage
	Detail string
}

// ErrorEvent represents an error during a research call.
type ErrorEvent struct {
	Err    error
	IsWarn bool
}

// CompletionStats contains final research statistics.
type CompletionStats struct {
	Results  int
	Queries  int
	Duration time.Duration
	Mode     string
	Profile  string
}

// StatsFromResponse summarizes a research response.
func StatsFromResponse(resp *research.Response) CompletionStats {
	if resp == nil {
		return CompletionStats{}
	}
	return CompletionStats{
		Results:  len(resp.Results),
		Queries:  len(resp.Queries),
		Duration: resp.Elapsed,
		Mode:     string(resp.Mode),
		Profile:  string(resp.Profile),
	}
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// ProgressFunc adapts a Renderer to the research progress callback.
// Unknown stage names are ignored.
func ProgressFunc(r Renderer) research.ProgressFunc {
	return func(p research.Progress) {
		if stage, ok := ParseStage(p.Stage); ok {
			r.UpdateProgress(ProgressEvent{Stage: stage, Detail: p.Detail})
		}
	}
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Question is shown in the progress panel header.
	Question string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithQuestion sets the question shown in the progress panel header.
func WithQuestion(q string) ConfigOption {
	return func(c *Config) {
		c.Question = q
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when --plain is specified.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}
	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}
	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
