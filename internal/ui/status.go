package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Service states reported by doctor.
const (
	StatusReady   = "ready"
	StatusOffline = "offline"
	StatusError   = "error"
)

// ServiceStatus is the health of one backend.
type ServiceStatus struct {
	Name    string        `json:"name"`
	URL     string        `json:"url"`
	Status  string        `json:"status"`
	Detail  string        `json:"detail,omitempty"`
	Latency time.Duration `json:"latency_ns"`
}

// StatusInfo contains backend health and local paths.
type StatusInfo struct {
	Version  string          `json:"version"`
	Services []ServiceStatus `json:"services"`

	Model          string `json:"model"`
	ModelInstalled bool   `json:"model_installed"`
	ModelCount     int    `json:"model_count"`

	ConfigPath string `json:"config_path,omitempty"`
	LogPath    string `json:"log_path,omitempty"`
}

// Healthy reports whether every service is ready.
func (s StatusInfo) Healthy() bool {
	for _, svc := range s.Services {
		if svc.Status != StatusReady {
			return false
		}
	}
	return true
}

// StatusRenderer displays backend status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("AmanWeb "+info.Version))

	_, _ = fmt.Fprintln(r.out, "  Services:")
	for _, svc := range info.Services {
		_, _ = fmt.Fprintf(r.out, "    %-8s %s  %s", svc.Name+":", r.renderStatus(svc.Status), r.styles.Dim.Render(svc.URL))
		if svc.Status == StatusReady && svc.Latency > 0 {
			_, _ = fmt.Fprintf(r.out, " %s", r.styles.Label.Render(formatLatency(svc.Latency)))
		}
		_, _ = fmt.Fprintln(r.out)
		if svc.Detail != "" {
			_, _ = fmt.Fprintf(r.out, "             %s\n", svc.Detail)
		}
	}
	_, _ = fmt.Fprintln(r.out)

	if info.Model != "" {
		_, _ = fmt.Fprintln(r.out, "  Model:")
		state := r.styles.Success.Render("installed")
		if !info.ModelInstalled {
			state = r.styles.Warning.Render("not pulled")
		}
		_, _ = fmt.Fprintf(r.out, "    %s (%s, %d available)\n", info.Model, state, info.ModelCount)
		_, _ = fmt.Fprintln(r.out)
	}

	if info.ConfigPath != "" || info.LogPath != "" {
		_, _ = fmt.Fprintln(r.out, "  Paths:")
		if info.ConfigPath != "" {
			_, _ = fmt.Fprintf(r.out, "    Config: %s\n", info.ConfigPath)
		}
		if info.LogPath != "" {
			_, _ = fmt.Fprintf(r.out, "    Logs:   %s\n", info.LogPath)
		}
	}
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case StatusReady:
		return r.styles.Success.Render(status)
	case StatusOffline:
		return r.styles.Warning.Render(status)
	case StatusError:
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatLatency formats a round trip for display.
func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
