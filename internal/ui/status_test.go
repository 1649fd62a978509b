package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() StatusInfo {
	return StatusInfo{
		Version: "1.2.0",
		Services: []ServiceStatus{
			{Name: "ollama", URL: "http://localhost:11434", Status: StatusReady, Latency: 12 * time.Millisecond},
			{Name: "searxng", URL: "http://localhost:8080", Status: StatusOffline, Detail: "connection refused"},
		},
		Model:          "llama3.2",
		ModelInstalled: true,
		ModelCount:     4,
		ConfigPath:     "/home/u/.config/amanweb/config.yaml",
		LogPath:        "/home/u/.amanweb/logs/server.log",
	}
}

func TestStatusInfo_Healthy(t *testing.T) {
	info := sampleStatus()
	assert.False(t, info.Healthy())

	info.Services[1].Status = StatusReady
	assert.True(t, info.Healthy())

	assert.True(t, StatusInfo{}.Healthy())
}

func TestStatusRenderer_Render(t *testing.T) {
	// Given: a no-color renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering status
	require.NoError(t, r.Render(sampleStatus()))

	// Then: services, model and paths are listed
	out := buf.String()
	assert.Contains(t, out, "AmanWeb 1.2.0")
	assert.Contains(t, out, "ollama:  ready  http://localhost:11434 12ms")
	assert.Contains(t, out, "searxng: offline  http://localhost:8080\n")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "llama3.2 (installed, 4 available)")
	assert.Contains(t, out, "Config: /home/u/.config/amanweb/config.yaml")
	assert.NotContains(t, out, "\x1b[")
}

func TestStatusRenderer_ModelNotPulled(t *testing.T) {
	buf := &bytes.Buffer{}
	info := sampleStatus()
	info.ModelInstalled = false

	require.NoError(t, NewStatusRenderer(buf, true).Render(info))

	assert.Contains(t, buf.String(), "llama3.2 (not pulled, 4 available)")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}

	require.NoError(t, NewStatusRenderer(buf, true).RenderJSON(sampleStatus()))

	var decoded StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleStatus(), decoded)
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLatency(tt.in))
	}
}
