package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEngineAttempt_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(EngineAttempts.WithLabelValues("brave", "ok"))

	RecordEngineAttempt("brave", "ok")

	after := testutil.ToFloat64(EngineAttempts.WithLabelValues("brave", "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordFetch_EmptyStrategyIsLabelledNone(t *testing.T) {
	before := testutil.ToFloat64(FetchTotal.WithLabelValues("none", "skipped"))

	RecordFetch("", "skipped")

	assert.Equal(t, before+1, testutil.ToFloat64(FetchTotal.WithLabelValues("none", "skipped")))
}

func TestSetCircuitBreakerState(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"closed", 0},
		{"half-open", 0.5},
		{"open", 1},
		{"bogus", 0},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			SetCircuitBreakerState("ollama-test", tt.state)
			assert.Equal(t, tt.want, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("ollama-test")))
		})
	}
}

func TestRecordResearch_ObservesAllCollectors(t *testing.T) {
	before := testutil.ToFloat64(ResearchTotal.WithLabelValues("auto", "standard", "ok"))

	RecordResearch("auto", "standard", "ok", 1.5, 4)

	assert.Equal(t, before+1, testutil.ToFloat64(ResearchTotal.WithLabelValues("auto", "standard", "ok")))
	assert.Positive(t, testutil.CollectAndCount(ResearchDuration))
	assert.Positive(t, testutil.CollectAndCount(ResearchResults))
}
