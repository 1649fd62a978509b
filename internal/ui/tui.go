package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer shows a live stage panel using bubbletea.
// It never reads stdin, so Ctrl+C reaches the caller's signal handling.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *researchModel
	tracker *ProgressTracker
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker()
	model := newResearchModel(tracker, cfg.Question)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(event.Stage, event.Detail)
	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)
	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.Finish()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program == nil {
		return nil
	}
	program.Quit()

	// An unresponsive program must not hang the CLI.
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

// Message types for bubbletea
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats
type tickMsg time.Time

// researchModel is the bubbletea model for research progress.
type researchModel struct {
	tracker     *ProgressTracker
	question    string
	width       int
	complete    bool
	stats       CompletionStats
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
}

func newResearchModel(tracker *ProgressTracker, question string) *researchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &researchModel{
		tracker:     tracker,
		question:    question,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       100,
	}
}

// Init implements tea.Model.
func (m *researchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *researchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = msg.Width - 20
		if m.progressBar.Width < 20 {
			m.progressBar.Width = 20
		}

	case progressUpdateMsg, errorMsg:
		// state lives in the tracker
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *researchModel) View() string {
	if m.complete {
		return m.renderComplete()
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{
		m.renderStages(),
		m.styles.Border.Render(strings.Repeat("─", contentWidth-2)),
		m.renderProgress(),
	}
	if detail := m.tracker.Stats().Detail; detail != "" {
		sections = append(sections, m.styles.Dim.Render(truncate(detail, contentWidth-2)))
	}

	title := "AmanWeb Research"
	if m.question != "" {
		title = "AmanWeb Research • " + truncate(m.question, contentWidth-20)
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDarkGray)).
		Padding(0, 1).
		Width(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel.Render(strings.Join(sections, "\n")),
		m.renderStatusBar(),
	)
}

// renderStages renders the pipeline stage indicators. Stages the call
// skipped stay hollow.
func (m *researchModel) renderStages() string {
	stats := m.tracker.Stats()
	visited := make(map[Stage]bool, len(stats.Visited))
	for _, s := range stats.Visited {
		visited[s] = true
	}

	parts := make([]string, 0, len(pipelineStages))
	for _, s := range pipelineStages {
		var icon string
		var style lipgloss.Style
		switch {
		case stats.Started && s == stats.Stage:
			icon = m.spinner.View()
			style = m.styles.Active
		case visited[s]:
			icon = "●"
			style = m.styles.Success
		default:
			icon = "○"
			style = m.styles.Dim
		}
		parts = append(parts, style.Render(icon+" "+s.String()))
	}
	return strings.Join(parts, m.styles.Dim.Render(" → "))
}

func (m *researchModel) renderProgress() string {
	stats := m.tracker.Stats()
	if !stats.Started {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Dim.Render("Starting..."))
	}
	bar := m.progressBar.ViewAs(stats.Progress)
	elapsed := m.styles.Label.Render(stats.Elapsed.Round(100 * time.Millisecond).String())
	return fmt.Sprintf("%s  %s", bar, elapsed)
}

func (m *researchModel) renderStatusBar() string {
	stats := m.tracker.Stats()
	var parts []string
	if stats.WarnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", stats.WarnCount)))
	}
	if stats.ErrorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", stats.ErrorCount)))
	}
	if len(parts) == 0 {
		return m.styles.Dim.Render("Ctrl+C to cancel")
	}
	return strings.Join(parts, m.styles.Dim.Render("  │  "))
}

func (m *researchModel) renderComplete() string {
	icon := m.styles.Success.Render("✓")
	if m.stats.Results == 0 {
		icon = m.styles.Warning.Render("⚠")
	}
	line := fmt.Sprintf("%s %d %s from %d %s in %s",
		icon,
		m.stats.Results, plural(m.stats.Results, "source", "sources"),
		m.stats.Queries, plural(m.stats.Queries, "query", "queries"),
		m.stats.Duration.Round(100*time.Millisecond))
	if m.stats.Mode != "" {
		line += m.styles.Label.Render(fmt.Sprintf("  (mode %s, profile %s)", m.stats.Mode, m.stats.Profile))
	}
	return line + "\n"
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

var _ Renderer = (*TUIRenderer)(nil)
