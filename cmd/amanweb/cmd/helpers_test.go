package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// backends are stub Ollama and SearXNG servers wired in through the
// environment.
type backends struct {
	ollama  *httptest.Server
	searxng *httptest.Server
	chats   atomic.Int32
}

// stubResults is what the SearXNG stub returns for every query.
var stubResults = []map[string]string{
	{
		"title":   "Go Concurrency Patterns: Pipelines and cancellation",
		"url":     "https://go.dev/blog/pipelines",
		"content": "Go's concurrency primitives make it easy to construct streaming data pipelines that make efficient use of I/O and multiple CPUs.",
		"engine":  "duckduckgo",
	},
	{
		"title":   "Pipeline (software) - Wikipedia",
		"url":     "https://en.wikipedia.org/wiki/Pipeline_(software)",
		"content": "In software engineering, a pipeline consists of a chain of processing elements.",
		"engine":  "wikipedia",
	},
}

// isolate points HOME, the user config and the working directory at fresh
// temp directories and restores the default logger afterwards.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range []string{
		"AMANWEB_OLLAMA_HOST", "OLLAMA_BASE_URL", "AMANWEB_SEARXNG_URL", "SEARXNG_URL",
		"AMANWEB_MODEL", "AMANWEB_MODE", "AMANWEB_MAX_RESULTS", "NO_COLOR",
	} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
	dir := t.TempDir()
	t.Chdir(dir)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return dir
}

// startBackends starts both stubs and exports their URLs.
func startBackends(t *testing.T) *backends {
	t.Helper()
	isolate(t)
	b := &backends{}

	b.searxng = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"query":   r.URL.Query().Get("q"),
			"results": stubResults,
		})
	}))
	t.Cleanup(b.searxng.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"models":[{"name":"llama3.1:8b","size":4920753328},{"name":"qwen2.5:7b","size":4683087332}]}`)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
		b.chats.Add(1)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Pipelines "},"done":false}`)
		_, _ = fmt.Fprintln(w, `{"message":{"role":"assistant","content":"use channels."},"done":false}`)
		_, _ = fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"response":"general","done":true}`)
	})
	b.ollama = httptest.NewServer(mux)
	t.Cleanup(b.ollama.Close)

	t.Setenv("AMANWEB_OLLAMA_HOST", b.ollama.URL)
	t.Setenv("AMANWEB_SEARXNG_URL", b.searxng.URL)
	return b
}

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustExecute runs the root command and fails the test on error.
func mustExecute(t *testing.T, args ...string) (string, string) {
	t.Helper()
	stdout, stderr, err := execute(t, args...)
	require.NoError(t, err, "args: %s\nstderr: %s", strings.Join(args, " "), stderr)
	return stdout, stderr
}
