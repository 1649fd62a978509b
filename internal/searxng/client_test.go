package searxng

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
)

func TestSearch_SendsParamsAndDecodesResults(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"query":"lfp","number_of_results":2,"results":[
			{"title":"LFP cells","url":"https://arxiv.org/abs/1","content":"snippet","engine":"arxiv"},
			{"title":"No engine","url":"https://example.com","content":"c"}
		]}`)
	}))
	defer srv.Close()
	c := New(srv.URL+"/", nil)

	// When: searching with engines and a time range
	results, err := c.Search(context.Background(), Query{Q: "lfp", Engines: "arxiv,google", TimeRange: "week"}, time.Second)

	// Then: the request carries every parameter and results are typed
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "lfp", got.URL.Query().Get("q"))
	assert.Equal(t, "json", got.URL.Query().Get("format"))
	assert.Equal(t, "arxiv,google", got.URL.Query().Get("engines"))
	assert.Equal(t, "week", got.URL.Query().Get("time_range"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "LFP cells", URL: "https://arxiv.org/abs/1", Content: "snippet", Engine: "arxiv"}, results[0])
	assert.Equal(t, "unknown", results[1].Engine)
}

func TestSearch_OmitsEmptyEnginesAndNoneTimeRange(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	results, err := New(srv.URL, nil).Search(context.Background(), Query{Q: "x", TimeRange: "none"}, time.Second)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotContains(t, query, "engines")
	assert.NotContains(t, query, "time_range")
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    string
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			code:    amerrors.ErrCodeSearchUnavailable,
		},
		{
			name:    "forbidden json format",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			code:    amerrors.ErrCodeSearchUnavailable,
		},
		{
			name:    "html body",
			handler: func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>captcha</html>") },
			code:    amerrors.ErrCodeSearchUnavailable,
		},
		{
			name: "slow backend",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
			code: amerrors.ErrCodeNetworkTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(srv.URL, nil).Search(context.Background(), Query{Q: "x"}, 50*time.Millisecond)

			require.Error(t, err)
			assert.Equal(t, tt.code, amerrors.GetCode(err))
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, nil).Ping(context.Background()))
}
