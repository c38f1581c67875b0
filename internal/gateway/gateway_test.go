package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"questgen/internal/artifact"
	"questgen/internal/bloom"
	"questgen/internal/llm"
	"questgen/internal/pipeline"
)

// opencensus starts a worker goroutine from package init (pulled in via a
// dependency); it can never be stopped, so goleak must ignore it.
var ignoreOpenCensus = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

// verifyNoLeaks registers the goroutine check as a cleanup so it runs after
// newTestServer's cleanup has closed the test server.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { goleak.VerifyNone(t, ignoreOpenCensus) })
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, *pipeline.Orchestrator) {
	t.Helper()
	orch := pipeline.New(artifact.NewStore(), llm.NewMockClient(), zap.NewNop().Sugar())
	srv := New(":0", orch, zap.NewNop().Sugar())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, ts, orch
}

func seedSession(t *testing.T, orch *pipeline.Orchestrator) pipeline.Objective {
	t.Helper()
	_, err := orch.SetModuleContent("Photosynthesis converts light to chemical energy.", nil)
	require.NoError(t, err)
	obj, err := orch.AddObjective("Students will explain photosynthesis.", bloom.Understand, 3)
	require.NoError(t, err)
	return obj
}

func TestSessionEndpoint(t *testing.T) {
	verifyNoLeaks(t)
	_, ts, orch := newTestServer(t)
	seedSession(t, orch)

	resp, err := http.Get(ts.URL + "/v1/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status pipeline.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Module.Set)
	require.Len(t, status.Objectives, 1)
	assert.Equal(t, artifact.Absent, status.Objectives[0].Alignment)
}

func TestEnsureEndpointGeneratesAndLists(t *testing.T) {
	verifyNoLeaks(t)
	_, ts, orch := newTestServer(t)
	obj := seedSession(t, orch)

	body, _ := json.Marshal(map[string]string{"loId": obj.ID})
	resp, err := http.Post(ts.URL+"/v1/ensure/alignment", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Cached bool `json:"cached"`
		Result struct {
			Label string `json:"label"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Cached)
	assert.Equal(t, "aligned", out.Result.Label)

	list, err := http.Get(ts.URL + "/v1/artifacts")
	require.NoError(t, err)
	defer list.Body.Close()
	var entries []artifactSummary
	require.NoError(t, json.NewDecoder(list.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, artifact.AlignmentName(obj.ID), entries[0].Name)
	assert.Equal(t, artifact.Fresh, entries[0].State)
	assert.NotZero(t, entries[0].Bytes)
}

func TestEnsureUnknownObjective(t *testing.T) {
	verifyNoLeaks(t)
	_, ts, orch := newTestServer(t)
	seedSession(t, orch)

	body, _ := json.Marshal(map[string]string{"loId": "nope"})
	resp, err := http.Post(ts.URL+"/v1/ensure/questions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchFeedDeliversTransitions(t *testing.T) {
	verifyNoLeaks(t)
	srv, ts, orch := newTestServer(t)
	obj := seedSession(t, orch)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/watch"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_, _, err = orch.EnsureAlignment(context.Background(), obj.ID)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev artifact.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, artifact.AlignmentName(obj.ID), ev.Name)
	assert.Equal(t, artifact.Fresh, ev.State)

	// Shutdown disconnects the watcher; goleak verifies the pumps exit.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
