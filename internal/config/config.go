// Package config loads AmanWeb configuration.
//
// Precedence, lowest to highest:
//  1. Hardcoded defaults (NewConfig)
//  2. User config (~/.config/amanweb/config.yaml)
//  3. Project config (.amanweb.yaml in the working directory)
//  4. Environment variables (AMANWEB_*, plus OLLAMA_BASE_URL and SEARXNG_URL)
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
)

// Config represents the complete AmanWeb configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Ollama  OllamaConfig `yaml:"ollama" json:"ollama"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Fetch   FetchConfig  `yaml:"fetch" json:"fetch"`
	Chat    ChatConfig   `yaml:"chat" json:"chat"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// OllamaConfig configures the language-model server.
type OllamaConfig struct {
	Host    string        `yaml:"host" json:"host"`
	Model   string        `yaml:"model" json:"model"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// RequestsPerMinute throttles non-streaming generate calls; 0 disables.
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int `yaml:"burst" json:"burst"`
	// CircuitFailures consecutive server failures stop further calls for
	// CircuitReset.
	CircuitFailures int           `yaml:"circuit_failures" json:"circuit_failures"`
	CircuitReset    time.Duration `yaml:"circuit_reset" json:"circuit_reset"`
}

// SearchConfig configures the research pipeline and SearXNG backend.
type SearchConfig struct {
	SearxngURL      string        `yaml:"searxng_url" json:"searxng_url"`
	DefaultMode     string        `yaml:"default_mode" json:"default_mode"`
	MaxResults      int           `yaml:"max_results" json:"max_results"`
	FetchContent    bool          `yaml:"fetch_content" json:"fetch_content"`
	Summarize       bool          `yaml:"summarize" json:"summarize"`
	PrimaryTimeout  time.Duration `yaml:"primary_timeout" json:"primary_timeout"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout" json:"fallback_timeout"`
	// DomainsFile replaces the embedded domain registry when set.
	DomainsFile string `yaml:"domains_file,omitempty" json:"domains_file,omitempty"`
}

// FetchConfig configures page content extraction.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	MaxHTMLChars   int           `yaml:"max_html_chars" json:"max_html_chars"`
	MaxMobileChars int           `yaml:"max_mobile_chars" json:"max_mobile_chars"`
	MaxPDFChars    int           `yaml:"max_pdf_chars" json:"max_pdf_chars"`
}

// ChatConfig configures the chat layer that consumes research results.
type ChatConfig struct {
	AssistantName string `yaml:"assistant_name" json:"assistant_name"`
	WebMaxResults int    `yaml:"web_max_results" json:"web_max_results"`
}

// ServerConfig configures the MCP and HTTP servers.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	HTTPAddr  string `yaml:"http_addr" json:"http_addr"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// MaxResultsLimit is the largest accepted max_results.
const MaxResultsLimit = 20

var validModes = []string{"auto", "scientific", "industrial", "code", "general"}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Ollama: OllamaConfig{
			Host:              "http://localhost:11434",
			Model:             "llama3.1:8b",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 120,
			Burst:             4,
			CircuitFailures:   3,
			CircuitReset:      30 * time.Second,
		},
		Search: SearchConfig{
			SearxngURL:      "http://localhost:8888",
			DefaultMode:     "auto",
			MaxResults:      5,
			FetchContent:    true,
			Summarize:       false,
			PrimaryTimeout:  6 * time.Second,
			FallbackTimeout: 15 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:        10 * time.Second,
			MaxHTMLChars:   3000,
			MaxMobileChars: 5000,
			MaxPDFChars:    5000,
		},
		Chat: ChatConfig{
			AssistantName: "Fath-AI",
			WebMaxResults: 8,
		},
		Server: ServerConfig{
			Transport: "stdio",
			HTTPAddr:  "127.0.0.1:8787",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
// $XDG_CONFIG_HOME/amanweb/config.yaml, else ~/.config/amanweb/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amanweb", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "amanweb", "config.yaml")
	}
	return filepath.Join(home, ".config", "amanweb", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the given working directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	for _, name := range []string{".amanweb.yaml", ".amanweb.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML decodes path over the current values, so keys absent from the
// file keep their previous value. Unknown keys are rejected.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return amerrors.New(amerrors.ErrCodeConfigNotFound, "failed to read config file "+path, err)
	}

	next := *c
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil && !errors.Is(err, io.EOF) {
		return amerrors.ConfigError(fmt.Sprintf("failed to parse config file %s: %v", path, err), err)
	}
	*c = next
	return nil
}

// envOverrides lists every environment variable AmanWeb reads.
// Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	OllamaHost       *string        `env:"AMANWEB_OLLAMA_HOST"`
	LegacyOllamaHost *string        `env:"OLLAMA_BASE_URL"`
	Model            *string        `env:"AMANWEB_MODEL"`
	OllamaTimeout    *time.Duration `env:"AMANWEB_OLLAMA_TIMEOUT"`
	SearxngURL       *string        `env:"AMANWEB_SEARXNG_URL"`
	LegacySearxngURL *string        `env:"SEARXNG_URL"`
	Mode             *string        `env:"AMANWEB_MODE"`
	MaxResults       *int           `env:"AMANWEB_MAX_RESULTS"`
	FetchContent     *bool          `env:"AMANWEB_FETCH_CONTENT"`
	Summarize        *bool          `env:"AMANWEB_SUMMARIZE"`
	DomainsFile      *string        `env:"AMANWEB_DOMAINS_FILE"`
	HTTPAddr         *string        `env:"AMANWEB_HTTP_ADDR"`
	Transport        *string        `env:"AMANWEB_TRANSPORT"`
	LogLevel         *string        `env:"AMANWEB_LOG_LEVEL"`
}

func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return amerrors.ConfigError(fmt.Sprintf("invalid environment override: %v", err), err)
	}

	setString(&c.Ollama.Host, o.LegacyOllamaHost)
	setString(&c.Ollama.Host, o.OllamaHost)
	setString(&c.Ollama.Model, o.Model)
	if o.OllamaTimeout != nil {
		c.Ollama.Timeout = *o.OllamaTimeout
	}
	setString(&c.Search.SearxngURL, o.LegacySearxngURL)
	setString(&c.Search.SearxngURL, o.SearxngURL)
	setString(&c.Search.DefaultMode, o.Mode)
	if o.MaxResults != nil {
		c.Search.MaxResults = *o.MaxResults
	}
	if o.FetchContent != nil {
		c.Search.FetchContent = *o.FetchContent
	}
	if o.Summarize != nil {
		c.Search.Summarize = *o.Summarize
	}
	setString(&c.Search.DomainsFile, o.DomainsFile)
	setString(&c.Server.HTTPAddr, o.HTTPAddr)
	setString(&c.Server.Transport, o.Transport)
	setString(&c.Server.LogLevel, o.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := validateURL("ollama.host", c.Ollama.Host); err != nil {
		return err
	}
	if err := validateURL("search.searxng_url", c.Search.SearxngURL); err != nil {
		return err
	}
	if c.Ollama.Model == "" {
		return amerrors.ConfigError("ollama.model must not be empty", nil)
	}
	if c.Ollama.RequestsPerMinute < 0 || c.Ollama.Burst < 0 {
		return amerrors.ConfigError("ollama.requests_per_minute and ollama.burst must be non-negative", nil)
	}
	if c.Ollama.CircuitFailures < 0 || c.Ollama.CircuitReset < 0 {
		return amerrors.ConfigError("ollama.circuit_failures and ollama.circuit_reset must be non-negative", nil)
	}
	if !isValidMode(c.Search.DefaultMode) {
		return amerrors.ConfigError(fmt.Sprintf("search.default_mode must be one of %s, got %q",
			strings.Join(validModes, ", "), c.Search.DefaultMode), nil)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > MaxResultsLimit {
		return amerrors.ConfigError(fmt.Sprintf("search.max_results must be between 1 and %d, got %d",
			MaxResultsLimit, c.Search.MaxResults), nil)
	}
	for name, d := range map[string]time.Duration{
		"ollama.timeout":          c.Ollama.Timeout,
		"search.primary_timeout":  c.Search.PrimaryTimeout,
		"search.fallback_timeout": c.Search.FallbackTimeout,
		"fetch.timeout":           c.Fetch.Timeout,
	} {
		if d <= 0 {
			return amerrors.ConfigError(name+" must be positive", nil)
		}
	}
	if c.Fetch.MaxHTMLChars <= 0 || c.Fetch.MaxMobileChars <= 0 || c.Fetch.MaxPDFChars <= 0 {
		return amerrors.ConfigError("fetch character limits must be positive", nil)
	}
	if c.Chat.WebMaxResults < 1 || c.Chat.WebMaxResults > MaxResultsLimit {
		return amerrors.ConfigError(fmt.Sprintf("chat.web_max_results must be between 1 and %d", MaxResultsLimit), nil)
	}
	if !strings.EqualFold(c.Server.Transport, "stdio") {
		return amerrors.ConfigError("server.transport must be 'stdio', got "+c.Server.Transport, nil)
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return amerrors.ConfigError("server.log_level must be 'debug', 'info', 'warn', or 'error', got "+c.Server.LogLevel, nil)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return amerrors.ConfigError(fmt.Sprintf("%s must be an http(s) URL, got %q", field, raw), err)
	}
	return nil
}

func isValidMode(mode string) bool {
	for _, m := range validModes {
		if m == mode {
			return true
		}
	}
	return false
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// BackupUserConfig copies the user config to config.yaml.bak before it is
// overwritten. Returns "" when there is nothing to back up.
func BackupUserConfig() (string, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}
	backup := path + ".bak"
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backup, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
