package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanweb/internal/searxng"
)

func TestEngineLadder(t *testing.T) {
	e := NewExecutor(nil, testRegistry(), 0, 0)

	tests := []struct {
		name    string
		engines string
		want    []string
	}{
		{"custom set first", "arxiv,ieee", []string{"primary", "brave", "duckduckgo", "default"}},
		{"no set skips primary", "", []string{"brave", "duckduckgo", "default"}},
		{"duplicate rung skipped", "brave", []string{"primary", "duckduckgo", "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, s := range e.engineLadder(tt.engines) {
				names = append(names, s.name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestExecute_FallsBackThroughLadder(t *testing.T) {
	// Given: the primary set errors and brave only returns blocked hosts
	search := &stubSearcher{}
	search.respond = func(q searxng.Query) ([]searxng.Result, error) {
		switch q.Engines {
		case "arxiv,ieee":
			return nil, errStub
		case "brave":
			return []searxng.Result{hit("https://pinterest.com/pin/1", "pin", "")}, nil
		default:
			return []searxng.Result{hit("https://example.com/1", "ok", "")}, nil
		}
	}
	e := NewExecutor(search, testRegistry(), 0, 0)

	// When: executing
	got := e.Execute(context.Background(), "q", "arxiv,ieee", TimeRangeWeek)

	// Then: duckduckgo answers after two failed rungs
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/1", got[0].URL)
	calls := search.snapshot()
	require.Len(t, calls, 3)
	assert.Equal(t, "arxiv,ieee", calls[0].query.Engines)
	assert.Equal(t, DefaultPrimaryTimeout, calls[0].timeout)
	assert.Equal(t, "brave", calls[1].query.Engines)
	assert.Equal(t, DefaultFallbackTimeout, calls[1].timeout)
	assert.Equal(t, "duckduckgo", calls[2].query.Engines)
	for _, c := range calls {
		assert.Equal(t, TimeRangeWeek, c.query.TimeRange)
		assert.Equal(t, "q", c.query.Q)
	}
}

func TestExecute_DefaultEngines(t *testing.T) {
	search := &stubSearcher{results: []searxng.Result{hit("https://example.com/1", "ok", "")}}
	e := NewExecutor(search, testRegistry(), time.Second, 2*time.Second)

	e.Execute(context.Background(), "q", "", TimeRangeNone)

	calls := search.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultEngines, calls[0].query.Engines)
	assert.Equal(t, time.Second, calls[0].timeout)
}

func TestExecute_AllStrategiesFail(t *testing.T) {
	search := &stubSearcher{respond: failingSearch}
	e := NewExecutor(search, testRegistry(), 0, 0)

	got := e.Execute(context.Background(), "q", "google", TimeRangeNone)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, search.snapshot(), 4)
}

func TestExecute_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	search := &stubSearcher{respond: failingSearch}
	e := NewExecutor(search, testRegistry(), 0, 0)

	got := e.Execute(ctx, "q", "google", TimeRangeNone)

	assert.Empty(t, got)
	assert.Empty(t, search.snapshot())
}
