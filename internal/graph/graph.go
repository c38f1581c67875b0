// Package graph declares the fixed dependency DAG over artifact kinds and
// implements the transitive invalidation cascade.
//
// Edges, by construction:
//
//	module    -> alignment, questions
//	objective -> alignment
//	alignment -> questions
//	questions -> export
//
// The graph is known at design time and acyclic; traversal is a plain
// depth-first walk over (kind, objective) pairs. Only artifacts are ever
// invalidated. Stage inputs (module, objective) appear as roots only: a
// changed input is handled by fingerprint replacement upstream, then a
// cascade from its node here.
package graph

import "questgen/internal/artifact"

var downstream = map[artifact.Kind][]artifact.Kind{
	artifact.KindModule:    {artifact.KindAlignment, artifact.KindQuestions},
	artifact.KindObjective: {artifact.KindAlignment},
	artifact.KindAlignment: {artifact.KindQuestions},
	artifact.KindQuestions: {artifact.KindExport},
	artifact.KindExport:    nil,
}

// Downstream returns the direct dependents of kind.
func Downstream(kind artifact.Kind) []artifact.Kind {
	return append([]artifact.Kind(nil), downstream[kind]...)
}

type node struct {
	kind        artifact.Kind
	objectiveID string
}

// InvalidateDownstream marks every artifact below the changed node stale.
// objectiveID scopes per-objective kinds; "" reaches every objective (a
// module content change). The export artifact is global and is always
// reached with no scope. Idempotent: re-invalidating an already stale or
// absent name is a no-op in the store.
func InvalidateDownstream(st *artifact.Store, from artifact.Kind, objectiveID string) {
	visited := make(map[node]bool)

	var walk func(n node)
	walk = func(n node) {
		for _, dep := range downstream[n.kind] {
			scope := n.objectiveID
			if !perObjective(dep) {
				scope = ""
			}
			child := node{kind: dep, objectiveID: scope}
			if visited[child] {
				continue
			}
			visited[child] = true
			invalidateKind(st, dep, scope)
			walk(child)
		}
	}
	walk(node{kind: from, objectiveID: objectiveID})
}

func invalidateKind(st *artifact.Store, kind artifact.Kind, objectiveID string) {
	for _, e := range st.List() {
		if e.Kind != kind {
			continue
		}
		if objectiveID != "" && artifact.ObjectiveIDOf(e.Name) != objectiveID {
			continue
		}
		st.Invalidate(e.Name)
	}
}

func perObjective(kind artifact.Kind) bool {
	return kind == artifact.KindAlignment || kind == artifact.KindQuestions
}
