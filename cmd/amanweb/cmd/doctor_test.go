package cmd

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/ui"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	// Given: both backends answering
	startBackends(t)

	// When: running diagnostics
	stdout, _ := mustExecute(t, "doctor", "--no-color")

	// Then: both services are ready and the model is installed
	assert.Contains(t, stdout, "ollama:")
	assert.Contains(t, stdout, "searxng:")
	assert.NotContains(t, stdout, ui.StatusOffline)
	assert.Contains(t, stdout, "llama3.1:8b (installed, 2 available)")
	assert.Contains(t, stdout, "✅ All 2 backends ready")
}

func TestDoctorCmd_SearxngDown_Fails(t *testing.T) {
	b := startBackends(t)
	b.searxng.Close()

	stdout, _, err := execute(t, "doctor", "--json")

	var de *doctorError
	require.ErrorAs(t, err, &de)

	var info ui.StatusInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	require.Len(t, info.Services, 2)
	assert.Equal(t, ui.StatusReady, info.Services[0].Status)
	assert.Equal(t, ui.StatusOffline, info.Services[1].Status)
	assert.NotEmpty(t, info.Services[1].Detail)
	assert.False(t, info.Healthy())
	assert.NotContains(t, stdout, "backends ready")
}

func TestServiceStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ok", nil, ui.StatusReady},
		{"unreachable", amerrors.SearchBackendError("refused", nil), ui.StatusOffline},
		{"timeout", amerrors.New(amerrors.ErrCodeNetworkTimeout, "slow", nil), ui.StatusOffline},
		{"bad status", amerrors.New(amerrors.ErrCodeLLMBadStatus, "500", nil), ui.StatusError},
		{"plain", errors.New("boom"), ui.StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := serviceStatus("svc", "http://x", time.Millisecond, tt.err)
			assert.Equal(t, tt.want, s.Status)
		})
	}
}

func TestModelInstalled(t *testing.T) {
	models := []ollama.Model{{Name: "llama3.1:8b"}, {Name: "mistral:latest"}}

	assert.True(t, modelInstalled(models, "llama3.1:8b"))
	assert.True(t, modelInstalled(models, "mistral"))
	assert.False(t, modelInstalled(models, "llama3.1:70b"))
	assert.False(t, modelInstalled(nil, "mistral"))
}
