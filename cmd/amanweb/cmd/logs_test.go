package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logsSample = `{"time":"2026-03-01T10:00:00.000Z","level":"INFO","msg":"mcp_server_started"}
{"time":"2026-03-01T10:00:01.000Z","level":"WARN","msg":"research_zero_results_retry","question":"q"}
{"time":"2026-03-01T10:00:02.000Z","level":"INFO","msg":"search_complete","results":5}
`

func writeLogFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amanweb.log")
	require.NoError(t, os.WriteFile(path, []byte(logsSample), 0o644))
	return path
}

func TestLogsCmd_ShowsLastLines(t *testing.T) {
	// Given: a log file with three entries
	isolate(t)
	path := writeLogFile(t)

	// When: showing the last two
	stdout, stderr := mustExecute(t, "logs", "--file", path, "-n", "2", "--no-color")

	// Then: only the two newest entries are printed
	assert.Contains(t, stderr, "Log file: "+path)
	assert.Equal(t, 2, strings.Count(stdout, "\n"))
	assert.NotContains(t, stdout, "mcp_server_started")
	assert.Contains(t, stdout, "search_complete results=5")
}

func TestLogsCmd_LevelAndFilter(t *testing.T) {
	isolate(t)
	path := writeLogFile(t)

	stdout, _ := mustExecute(t, "logs", "--file", path, "--level", "warn", "--no-color")
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, "research_zero_results_retry")

	stdout, _ = mustExecute(t, "logs", "--file", path, "--filter", "mcp_.*", "--no-color")
	assert.Contains(t, stdout, "mcp_server_started")
	assert.NotContains(t, stdout, "search_complete")
}

func TestLogsCmd_Errors(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "logs", "--file", filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")

	_, _, err = execute(t, "logs", "--file", writeLogFile(t), "--filter", "(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
