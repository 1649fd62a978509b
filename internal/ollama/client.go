// Package ollama is a small client for the Ollama HTTP API.
//
// Generate calls go through a process-wide rate limiter and a circuit
// breaker, so a stopped model server costs a research request one timeout
// instead of one per pipeline stage.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/metrics"
)

// Config configures a Client.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration

	// RequestsPerMinute limits Generate calls; 0 disables limiting.
	RequestsPerMinute int
	Burst             int

	// BreakerFailures and BreakerReset tune the circuit breaker;
	// zero keeps the breaker defaults.
	BreakerFailures int
	BreakerReset    time.Duration

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client talks to one Ollama server.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *amerrors.CircuitBreaker
}

// New creates a client. It does not contact the server.
func New(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// No http.Client.Timeout: every call carries its own context deadline
	// and chat streams may legitimately run for minutes.
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), burst)
	}

	breakerOpts := []amerrors.CircuitBreakerOption{
		amerrors.WithMaxFailures(cfg.BreakerFailures),
		amerrors.WithFailureFilter(countsAsFailure),
		amerrors.WithStateChange(func(name string, s amerrors.State) {
			slog.Warn("circuit_breaker_state_change",
				slog.String("name", name),
				slog.String("state", s.String()))
			metrics.SetCircuitBreakerState(name, s.String())
		}),
	}
	if cfg.BreakerReset > 0 {
		breakerOpts = append(breakerOpts, amerrors.WithResetTimeout(cfg.BreakerReset))
	}
	breaker := amerrors.NewCircuitBreaker("ollama", breakerOpts...)

	return &Client{cfg: cfg, http: hc, limiter: limiter, breaker: breaker}
}

// Model returns the default model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Host returns the server base URL.
func (c *Client) Host() string {
	return c.cfg.Host
}

// Generate runs a non-streaming /api/generate call and returns the response text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", amerrors.New(amerrors.ErrCodeLLMRateLimited, "rate limiter wait aborted", err)
		}
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	start := time.Now()
	text, err := amerrors.CircuitDo(c.breaker, func() (string, error) {
		out, genErr := c.generate(ctx, generateBody{
			Model:   model,
			Prompt:  req.Prompt,
			Stream:  false,
			Options: req.Options,
		})
		if genErr != nil && ctx.Err() != nil {
			// the caller gave up; the server may be fine
			return "", ctx.Err()
		}
		return out, genErr
	})
	metrics.RecordLLMCall("generate", callStatus(err), time.Since(start).Seconds())
	if errors.Is(err, amerrors.ErrCircuitOpen) {
		return "", amerrors.LLMError("Ollama circuit breaker is open", err)
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, body generateBody) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", amerrors.New(amerrors.ErrCodeLLMBadStatus, "failed to decode generate response", err)
	}
	if result.Error != "" {
		return "", amerrors.New(amerrors.ErrCodeLLMBadStatus, result.Error, nil)
	}
	return result.Response, nil
}

// ChatStream runs a streaming /api/chat call, invoking onChunk for every
// non-empty content fragment. Connection failures are retried before the
// first byte; once streaming has begun errors are returned as-is.
// Returning an error from onChunk stops the stream.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, onChunk func(string) error) error {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	body := chatBody{
		Model:    model,
		Messages: req.Messages,
		Stream:   true,
		Options:  req.Options,
	}

	start := time.Now()
	resp, err := amerrors.RetryWithResult(ctx, amerrors.DefaultRetryConfig(), func() (*http.Response, error) {
		return c.openStream(ctx, body)
	})
	if err != nil {
		metrics.RecordLLMCall("chat", callStatus(err), time.Since(start).Seconds())
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	err = readChatStream(resp.Body, onChunk)
	metrics.RecordLLMCall("chat", callStatus(err), time.Since(start).Seconds())
	return err
}

// openStream posts the chat request and waits at most Timeout for headers.
func (c *Client) openStream(ctx context.Context, body chatBody) (*http.Response, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(c.cfg.Timeout, cancel)

	resp, err := c.post(streamCtx, "/api/chat", body)
	if !timer.Stop() {
		cancel()
		if err == nil {
			_ = resp.Body.Close()
		}
		return nil, amerrors.New(amerrors.ErrCodeNetworkTimeout, "timed out waiting for Ollama", context.DeadlineExceeded)
	}
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func readChatStream(r io.Reader, onChunk func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			slog.Debug("ollama_stream_skip_line", slog.String("error", err.Error()))
			continue
		}
		if chunk.Error != "" {
			return amerrors.New(amerrors.ErrCodeLLMBadStatus, chunk.Error, nil)
		}
		if chunk.Message.Content != "" {
			if err := onChunk(chunk.Message.Content); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return amerrors.LLMError("chat stream interrupted", err)
	}
	return nil
}

// ListModels returns the models installed on the server (/api/tags).
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Host+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, amerrors.New(amerrors.ErrCodeLLMBadStatus, "failed to decode model list", err)
	}
	if tags.Models == nil {
		tags.Models = []Model{}
	}
	return tags.Models, nil
}

// Available reports whether the server answers /api/tags.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.ListModels(ctx)
	return err == nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes req and maps transport and status failures to AmanErrors.
// On success the caller owns resp.Body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return nil, amerrors.New(amerrors.ErrCodeNetworkTimeout, "Ollama request timed out", err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, amerrors.LLMError("failed to connect to Ollama at "+c.cfg.Host, err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, amerrors.New(amerrors.ErrCodeLLMRateLimited, "Ollama is rate limiting requests", nil)
	}
	return nil, amerrors.New(amerrors.ErrCodeLLMBadStatus,
		fmt.Sprintf("Ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), nil).
		WithDetail("status", fmt.Sprint(resp.StatusCode))
}

// countsAsFailure reports whether err says something about the server's
// health. The caller's own cancellation and 4xx answers to the caller's
// input (an unknown model) do not.
func countsAsFailure(err error) bool {
	var ae *amerrors.AmanError
	if !errors.As(err, &ae) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if ae.Code == amerrors.ErrCodeLLMBadStatus {
		status, _ := strconv.Atoi(ae.Details["status"])
		return status < 400 || status >= 500
	}
	return true
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, amerrors.ErrCircuitOpen):
		return "circuit_open"
	default:
		if code := amerrors.GetCode(err); code != "" {
			return strings.ToLower(strings.TrimPrefix(code, "ERR_"))
		}
		return "error"
	}
}
