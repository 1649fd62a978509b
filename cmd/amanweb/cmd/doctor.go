package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/amanweb/internal/config"
	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/logging"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/output"
	"github.com/Aman-CERP/amanweb/internal/ui"
	"github.com/Aman-CERP/amanweb/pkg/version"
)

const doctorTimeout = 10 * time.Second

// pingRetry gives a SearXNG instance that is still warming up its engines
// one more chance after a timeout.
var pingRetry = amerrors.RetryConfig{
	MaxRetries:   1,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     500 * time.Millisecond,
	Multiplier:   1,
	ShouldRetry:  amerrors.IsRetryable,
}

func newDoctorCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that Ollama and SearXNG are reachable",
		Long: `Run diagnostics against the configured backends.

Checks:
  - Ollama answers /api/tags and has the configured model pulled
  - SearXNG answers a JSON search

Exits non-zero when a backend is unreachable.
Use --json for machine-readable output.`,
		Example: `  amanweb doctor
  amanweb doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, root, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(ctx context.Context, cmd *cobra.Command, root *rootOptions, jsonOutput bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	info := collectStatus(ctx, a)
	renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), root.colorDisabled())
	if jsonOutput {
		err = renderer.RenderJSON(info)
	} else {
		err = renderer.Render(info)
	}
	if err != nil {
		return err
	}

	if !info.Healthy() {
		return &doctorError{message: "one or more backends are unreachable"}
	}
	if !jsonOutput {
		output.New(cmd.OutOrStdout()).Successf("All %d backends ready", len(info.Services))
	}
	return nil
}

// doctorError is a custom error for doctor command failures.
type doctorError struct {
	message string
}

func (e *doctorError) Error() string {
	return e.message
}

// collectStatus checks both backends concurrently.
func collectStatus(ctx context.Context, a *app) ui.StatusInfo {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	info := ui.StatusInfo{
		Version: version.Version,
		Model:   a.cfg.Ollama.Model,
		LogPath: logging.DefaultLogPath(),
	}
	if config.UserConfigExists() {
		info.ConfigPath = config.GetUserConfigPath()
	}

	var llmStatus, searxStatus ui.ServiceStatus
	var models []ollama.Model
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		models, err = a.llm.ListModels(gctx)
		llmStatus = serviceStatus("ollama", a.llm.Host(), time.Since(start), err)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		err := amerrors.Retry(gctx, pingRetry, func() error { return a.searx.Ping(gctx) })
		searxStatus = serviceStatus("searxng", a.searx.BaseURL(), time.Since(start), err)
		return nil
	})
	_ = g.Wait()

	info.Services = []ui.ServiceStatus{llmStatus, searxStatus}
	info.ModelCount = len(models)
	info.ModelInstalled = modelInstalled(models, a.cfg.Ollama.Model)
	return info
}

// serviceStatus classifies a check result. Transport failures mean the
// service is offline; anything else is an error state.
func serviceStatus(name, url string, latency time.Duration, err error) ui.ServiceStatus {
	s := ui.ServiceStatus{Name: name, URL: url, Status: ui.StatusReady, Latency: latency}
	if err == nil {
		return s
	}

	s.Status = ui.StatusError
	switch amerrors.GetCode(err) {
	case amerrors.ErrCodeLLMUnavailable, amerrors.ErrCodeSearchUnavailable, amerrors.ErrCodeNetworkTimeout:
		s.Status = ui.StatusOffline
	}
	s.Detail = err.Error()
	return s
}

// modelInstalled matches name against installed models, treating a
// missing tag as ":latest".
func modelInstalled(models []ollama.Model, name string) bool {
	want := name
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for _, m := range models {
		if m.Name == name || m.Name == want {
			return true
		}
	}
	return false
}
