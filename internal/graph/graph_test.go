package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"questgen/internal/artifact"
	"questgen/internal/fingerprint"
)

func seededStore(t *testing.T) *artifact.Store {
	t.Helper()
	st := artifact.NewStore()
	for _, name := range []string{
		artifact.AlignmentName("lo-a"), artifact.QuestionsName("lo-a"),
		artifact.AlignmentName("lo-b"), artifact.QuestionsName("lo-b"),
		artifact.ExportName,
	} {
		st.Put(name, json.RawMessage(`{}`), fingerprint.Text(name))
	}
	return st
}

func states(st *artifact.Store) map[string]artifact.State {
	out := make(map[string]artifact.State)
	for _, e := range st.List() {
		out[e.Name] = e.State
	}
	return out
}

func TestModuleChangeReachesEverything(t *testing.T) {
	st := seededStore(t)
	InvalidateDownstream(st, artifact.KindModule, "")

	for name, state := range states(st) {
		assert.Equal(t, artifact.Stale, state, name)
	}
}

func TestObjectiveChangeIsScoped(t *testing.T) {
	st := seededStore(t)
	InvalidateDownstream(st, artifact.KindObjective, "lo-a")

	got := states(st)
	assert.Equal(t, artifact.Stale, got[artifact.AlignmentName("lo-a")])
	assert.Equal(t, artifact.Stale, got[artifact.QuestionsName("lo-a")])
	assert.Equal(t, artifact.Stale, got[artifact.ExportName], "export depends on every question set")
	assert.Equal(t, artifact.Fresh, got[artifact.AlignmentName("lo-b")], "sibling objective untouched")
	assert.Equal(t, artifact.Fresh, got[artifact.QuestionsName("lo-b")])
}

func TestAlignmentEdgeReachesQuestionsNotSelf(t *testing.T) {
	st := seededStore(t)
	InvalidateDownstream(st, artifact.KindAlignment, "lo-b")

	got := states(st)
	assert.Equal(t, artifact.Fresh, got[artifact.AlignmentName("lo-b")], "the changed node itself is not invalidated")
	assert.Equal(t, artifact.Stale, got[artifact.QuestionsName("lo-b")])
	assert.Equal(t, artifact.Stale, got[artifact.ExportName])
	assert.Equal(t, artifact.Fresh, got[artifact.QuestionsName("lo-a")])
}

func TestQuestionsEdgeReachesExportOnly(t *testing.T) {
	st := seededStore(t)
	InvalidateDownstream(st, artifact.KindQuestions, "lo-a")

	got := states(st)
	assert.Equal(t, artifact.Stale, got[artifact.ExportName])
	assert.Equal(t, artifact.Fresh, got[artifact.AlignmentName("lo-a")])
	assert.Equal(t, artifact.Fresh, got[artifact.QuestionsName("lo-a")])
}

func TestCascadeIsIdempotent(t *testing.T) {
	st := seededStore(t)
	InvalidateDownstream(st, artifact.KindModule, "")
	before := states(st)
	InvalidateDownstream(st, artifact.KindModule, "")
	assert.Equal(t, before, states(st))
}

func TestCascadeOnEmptyStoreTerminates(t *testing.T) {
	st := artifact.NewStore()
	InvalidateDownstream(st, artifact.KindModule, "")
	assert.Empty(t, st.List())
}

func TestDownstreamDeclaration(t *testing.T) {
	assert.ElementsMatch(t, []artifact.Kind{artifact.KindAlignment, artifact.KindQuestions}, Downstream(artifact.KindModule))
	assert.ElementsMatch(t, []artifact.Kind{artifact.KindAlignment}, Downstream(artifact.KindObjective))
	assert.ElementsMatch(t, []artifact.Kind{artifact.KindQuestions}, Downstream(artifact.KindAlignment))
	assert.ElementsMatch(t, []artifact.Kind{artifact.KindExport}, Downstream(artifact.KindQuestions))
	assert.Empty(t, Downstream(artifact.KindExport))
}
