package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/logging"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"search", "ask", "fetch", "models", "serve", "http", "doctor", "logs", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"debug", "no-color", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_DebugWritesLogFile(t *testing.T) {
	// Given: an isolated home directory
	isolate(t)

	// When: running any command with --debug
	mustExecute(t, "version", "--short", "--debug")

	// Then: the debug line is in the default log file
	data, err := os.ReadFile(logging.DefaultLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug_logging_enabled")
}

func TestRootCmd_ProfileMem(t *testing.T) {
	dir := isolate(t)
	heap := filepath.Join(dir, "heap.prof")

	mustExecute(t, "version", "--profile-mem", heap)

	info, err := os.Stat(heap)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestFormatError(t *testing.T) {
	// Given: a structured validation error with a hint
	ae := amerrors.ValidationError(amerrors.ErrCodeInvalidMode, "unknown search mode").
		WithSuggestion("Use one of: auto, scientific, industrial, code, general")

	// When: formatting both kinds of error
	structured := formatError(ae)
	plain := formatError(errors.New("boom"))

	// Then: structured errors carry hint and code
	assert.Contains(t, structured, "Error: unknown search mode")
	assert.Contains(t, structured, "Hint: Use one of")
	assert.Contains(t, structured, amerrors.ErrCodeInvalidMode)
	assert.Equal(t, "Error: boom\n", plain)
}
