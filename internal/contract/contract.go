// Package contract defines the schemas every externally generated payload
// must satisfy before it becomes part of durable state, and the fail-fast
// validation that gates acceptance.
package contract

import "questgen/internal/bloom"

// Contract names, shared by the validator and the orchestrator.
const (
	Alignment   = "alignment"
	QuestionSet = "question-set"
)

// AlignmentLabel is the verdict enumeration of the alignment contract.
type AlignmentLabel string

const (
	Aligned          AlignmentLabel = "aligned"
	PartiallyAligned AlignmentLabel = "partially-aligned"
	NotAligned       AlignmentLabel = "not-aligned"
)

// AlignmentLabels returns the allowed labels.
func AlignmentLabels() []AlignmentLabel {
	return []AlignmentLabel{Aligned, PartiallyAligned, NotAligned}
}

// AlignmentResult is the typed payload of the alignment contract: a verdict
// on whether a learning objective matches the module content at the stated
// cognitive level.
type AlignmentResult struct {
	Label      AlignmentLabel `json:"label"`
	Reasons    []string       `json:"reasons"`
	Suggestion string         `json:"suggestion"`
}

// OptionIDs are the fixed option identifiers of a generated question, in
// presentation order.
var OptionIDs = []string{"A", "B", "C", "D"}

// Option is one answer choice of a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one validated multiple-choice question.
type Question struct {
	Stem             string            `json:"stem"`
	Options          []Option          `json:"options"`
	CorrectOptionID  string            `json:"correct_option_id"`
	Rationale        string            `json:"rationale,omitempty"`
	OptionRationales map[string]string `json:"option_rationales,omitempty"`
	ContentReference string            `json:"content_reference,omitempty"`
}

// Correct returns the text of the designated correct option.
func (q Question) Correct() string {
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID {
			return opt.Text
		}
	}
	return ""
}

// QuestionSetResult is the typed payload of the question-set contract.
type QuestionSetResult struct {
	Questions []Question `json:"questions"`
}

// ObjectiveMeta carries the learning-objective context a question set was
// generated for. It rides along in exports and status output, not in the
// generated payload itself.
type ObjectiveMeta struct {
	ID    string      `json:"id"`
	Text  string      `json:"text"`
	Level bloom.Level `json:"level"`
}
