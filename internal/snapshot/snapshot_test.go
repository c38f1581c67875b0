package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"questgen/internal/artifact"
	"questgen/internal/bloom"
	"questgen/internal/llm"
	"questgen/internal/pipeline"
)

func sessionState(t *testing.T) State {
	t.Helper()
	orch := pipeline.New(artifact.NewStore(), llm.NewMockClient(), zap.NewNop().Sugar())
	_, err := orch.SetModuleContent("Photosynthesis converts light to chemical energy.", nil)
	require.NoError(t, err)
	obj, err := orch.AddObjective("Students will explain photosynthesis.", bloom.Understand, 3)
	require.NoError(t, err)
	_, _, err = orch.EnsureAlignment(context.Background(), obj.ID)
	require.NoError(t, err)
	_, _, err = orch.EnsureQuestions(context.Background(), obj.ID)
	require.NoError(t, err)

	sess, entries := orch.SessionState()
	return State{Session: sess, Artifacts: entries}
}

// Fingerprints and values must come back verbatim: a loaded session's
// freshness checks behave exactly like the session that saved it, with no
// recomputation on load.
func TestFileRoundTrip(t *testing.T) {
	st, err := NewFileStorage(t.TempDir(), "snapshot.json")
	require.NoError(t, err)
	defer st.Close()

	state := sessionState(t)
	require.NoError(t, Save(context.Background(), st, state))

	loaded, err := Load(context.Background(), st)
	require.NoError(t, err)
	if diff := cmp.Diff(state, loaded, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("round trip mismatch (-saved +loaded):\n%s", diff)
	}

	// A restored orchestrator sees every artifact fresh without any
	// backend call.
	orch := pipeline.New(artifact.NewStore(), failingClient{t}, zap.NewNop().Sugar())
	orch.Restore(loaded.Session, loaded.Artifacts)
	status := orch.Status()
	require.Len(t, status.Objectives, 1)
	assert.True(t, status.Objectives[0].AlignmentCurrent)
	assert.True(t, status.Objectives[0].QuestionsCurrent)
	_, cached, err := orch.EnsureQuestions(context.Background(), status.Objectives[0].Objective.ID)
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestSQLiteRoundTrip(t *testing.T) {
	st, err := NewSQLiteStorage(context.Background(), t.TempDir()+"/snapshot.db")
	require.NoError(t, err)
	defer st.Close()

	state := sessionState(t)
	require.NoError(t, Save(context.Background(), st, state))
	require.NoError(t, Save(context.Background(), st, state), "second save upserts")

	loaded, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.Len(t, loaded.Artifacts, len(state.Artifacts))
	assert.Equal(t, state.Session.Module.Fingerprint, loaded.Session.Module.Fingerprint)
}

func TestLoadMissingSnapshot(t *testing.T) {
	st, err := NewFileStorage(t.TempDir(), "snapshot.json")
	require.NoError(t, err)
	_, err = Load(context.Background(), st)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	st, err := NewFileStorage(t.TempDir(), "snapshot.json")
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), []byte("{not json")))

	_, err = Load(context.Background(), st)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "load", failure.Op)
}

func TestLoadVersionMismatch(t *testing.T) {
	st, err := NewFileStorage(t.TempDir(), "snapshot.json")
	require.NoError(t, err)
	env, _ := json.Marshal(Envelope{Version: 99, SavedAt: time.Now()})
	require.NoError(t, st.Save(context.Background(), env))

	_, err = Load(context.Background(), st)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Error(), "version 99")
}

// failingClient fails the test if any generation call happens.
type failingClient struct{ t *testing.T }

func (f failingClient) Name() string { return "failing" }
func (f failingClient) Close() error { return nil }
func (f failingClient) GenerateJSON(context.Context, string, any) (json.RawMessage, error) {
	f.t.Fatal("unexpected backend call after snapshot restore")
	return nil, nil
}
