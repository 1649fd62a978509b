package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanweb/internal/research"
)

func TestStage_StringAndIcon(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
		icon  string
	}{
		{StageClassify, "Classify", "CLASSIFY"},
		{StageQueries, "Queries", "QUERIES"},
		{StageSearch, "Search", "SEARCH"},
		{StageEvaluate, "Evaluate", "EVAL"},
		{StageRank, "Rank", "RANK"},
		{StageFetch, "Fetch", "FETCH"},
		{StageAssemble, "Assemble", "ASSEMBLE"},
		{StageComplete, "Complete", "DONE"},
		{Stage(99), "Unknown", "???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.stage.String())
			assert.Equal(t, tt.icon, tt.stage.Icon())
		})
	}
}

func TestParseStage_CoversEveryPipelineStage(t *testing.T) {
	names := []string{
		research.StageClassify, research.StageQueries, research.StageSearch, research.StageEvaluate,
		research.StageRank, research.StageFetch, research.StageAssemble,
	}

	for i, name := range names {
		stage, ok := ParseStage(name)
		require.True(t, ok, name)
		assert.Equal(t, pipelineStages[i], stage)
	}

	_, ok := ParseStage("summarize")
	assert.False(t, ok)
}

func TestProgressFunc_ForwardsKnownStages(t *testing.T) {
	// Given: a plain renderer behind the research callback
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))
	fn := ProgressFunc(r)

	// When: the pipeline reports stages
	fn(research.Progress{Stage: research.StageSearch, Detail: "cathode calendering"})
	fn(research.Progress{Stage: "unknown"})
	fn(research.Progress{Stage: research.StageRank})

	// Then: known stages are printed in order
	assert.Equal(t, "[SEARCH] cathode calendering\n[RANK]\n", buf.String())
}

func TestStatsFromResponse(t *testing.T) {
	resp := &research.Response{
		Queries: []string{"a", "b"},
		Results: make([]research.EnrichedResult, 3),
		Mode:    research.ModeCode,
		Profile: "code",
	}

	stats := StatsFromResponse(resp)

	assert.Equal(t, CompletionStats{Results: 3, Queries: 2, Mode: "code", Profile: "code"}, stats)
	assert.Equal(t, CompletionStats{}, StatsFromResponse(nil))
}

func TestIsTTY_NonTerminals(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestNewConfig_WithOptions(t *testing.T) {
	// Given: config with options
	buf := &bytes.Buffer{}
	cfg := NewConfig(buf, WithForcePlain(true), WithNoColor(true), WithQuestion("q"))

	// Then: options are applied
	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "q", cfg.Question)
}

func TestNewRenderer_ReturnsPlainRendererOffTerminal(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"force plain", NewConfig(&bytes.Buffer{}, WithForcePlain(true))},
		{"buffer output", NewConfig(&bytes.Buffer{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.cfg)

			_, ok := r.(*PlainRenderer)
			require.True(t, ok, "expected PlainRenderer")
		})
	}
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())

	_ = os.Unsetenv("NO_COLOR")
	assert.False(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
	assert.False(t, DetectCI())
}
