package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Aman-CERP/amanweb/internal/chat"
	"github.com/Aman-CERP/amanweb/internal/config"
	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/fetch"
	"github.com/Aman-CERP/amanweb/internal/httpapi"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/research"
	"github.com/Aman-CERP/amanweb/internal/searxng"
)

// app holds the services built from one loaded configuration.
type app struct {
	cfg        *config.Config
	registry   *domains.Registry
	llm        *ollama.Client
	searx      *searxng.Client
	fetcher    *fetch.Fetcher
	researcher *research.Researcher
}

// loadConfig loads configuration for the working directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return config.Load(cwd)
}

// newApp loads configuration and wires every service. opts are passed to
// the researcher, for example a progress observer.
func newApp(opts ...research.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildApp(cfg, opts...)
}

func buildApp(cfg *config.Config, opts ...research.Option) (*app, error) {
	registry := domains.Default()
	if cfg.Search.DomainsFile != "" {
		r, err := domains.LoadFile(cfg.Search.DomainsFile)
		if err != nil {
			return nil, err
		}
		registry = r
		slog.Debug("domain_registry_loaded", slog.String("path", cfg.Search.DomainsFile))
	}

	llm := ollama.New(ollama.Config{
		Host:              cfg.Ollama.Host,
		Model:             cfg.Ollama.Model,
		Timeout:           cfg.Ollama.Timeout,
		RequestsPerMinute: cfg.Ollama.RequestsPerMinute,
		Burst:             cfg.Ollama.Burst,
		BreakerFailures:   cfg.Ollama.CircuitFailures,
		BreakerReset:      cfg.Ollama.CircuitReset,
	})
	searx := searxng.New(cfg.Search.SearxngURL, nil)

	fetchCfg := fetch.DefaultConfig()
	fetchCfg.Timeout = cfg.Fetch.Timeout
	fetchCfg.MaxHTMLChars = cfg.Fetch.MaxHTMLChars
	fetchCfg.MaxMobileChars = cfg.Fetch.MaxMobileChars
	fetchCfg.MaxPDFChars = cfg.Fetch.MaxPDFChars
	fetcher := fetch.New(fetchCfg)

	researcher := research.New(registry, llm, searx, fetcher, research.Config{
		DefaultModel:    cfg.Ollama.Model,
		PrimaryTimeout:  cfg.Search.PrimaryTimeout,
		FallbackTimeout: cfg.Search.FallbackTimeout,
		Summarize:       cfg.Search.Summarize,
	}, opts...)

	return &app{
		cfg:        cfg,
		registry:   registry,
		llm:        llm,
		searx:      searx,
		fetcher:    fetcher,
		researcher: researcher,
	}, nil
}

// chatService builds the chat layer on top of the researcher.
func (a *app) chatService() *chat.Service {
	return chat.New(a.llm, a.researcher, chat.Config{
		AssistantName: a.cfg.Chat.AssistantName,
		DefaultModel:  a.cfg.Ollama.Model,
		WebMaxResults: a.cfg.Chat.WebMaxResults,
	})
}

// healthChecks checks both backends for /healthz and doctor.
func (a *app) healthChecks() map[string]httpapi.HealthCheck {
	return map[string]httpapi.HealthCheck{
		"ollama": func(ctx context.Context) error {
			_, err := a.llm.ListModels(ctx)
			return err
		},
		"searxng": a.searx.Ping,
	}
}
