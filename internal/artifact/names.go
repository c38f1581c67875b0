// Package artifact owns the derived-artifact store: named values paired
// with the fingerprint of the inputs that produced them, plus the
// Absent/Fresh/Stale lifecycle the orchestrator's freshness checks rely on.
package artifact

import "strings"

// Kind groups artifact names by the stage that produces them. Module and
// objective are stage-input kinds: they appear as upstream nodes in the
// dependency graph but are never stored as artifacts.
type Kind string

const (
	KindModule    Kind = "module"
	KindObjective Kind = "objective"
	KindAlignment Kind = "alignment"
	KindQuestions Kind = "questions"
	KindExport    Kind = "export"
)

// ExportName is the single export artifact's name.
const ExportName = "export"

// AlignmentName returns the alignment artifact name for one objective.
func AlignmentName(objectiveID string) string { return "alignment/" + objectiveID }

// QuestionsName returns the question-set artifact name for one objective.
func QuestionsName(objectiveID string) string { return "questions/" + objectiveID }

// KindOf derives the kind from an artifact name.
func KindOf(name string) Kind {
	switch {
	case name == ExportName:
		return KindExport
	case strings.HasPrefix(name, "alignment/"):
		return KindAlignment
	case strings.HasPrefix(name, "questions/"):
		return KindQuestions
	}
	return ""
}

// ObjectiveIDOf extracts the objective id from a per-objective artifact
// name, or "" for names that are not scoped to one objective.
func ObjectiveIDOf(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// State is one step of the artifact lifecycle.
type State string

const (
	// Absent: never generated (or removed).
	Absent State = "absent"
	// Fresh: generated and not invalidated since; usable on fingerprint match.
	Fresh State = "fresh"
	// Stale: invalidated by an upstream change, value cleared, awaiting
	// regeneration. Equivalent to Absent for cache purposes.
	Stale State = "stale"
)

func (s State) String() string { return string(s) }
