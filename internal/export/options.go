// Package export renders a validated question set into a Word document.
// The rendered bytes are themselves an artifact: the orchestrator stores
// them against a fingerprint over the question sets and these options, so
// an unchanged upstream re-uses the stored document.
package export

// Options are the named inclusion switches plus the objective selection and
// an optional per-question filter expression.
type Options struct {
	IncludeLOs        bool `json:"include_los"`
	IncludeBloom      bool `json:"include_bloom"`
	IncludeAnswerKey  bool `json:"include_answer_key"`
	IncludeFeedback   bool `json:"include_feedback"`
	IncludeRationale  bool `json:"include_rationale"`
	IncludeContentRef bool `json:"include_content_ref"`
	// ObjectiveIDs selects which objectives to export. Empty means every
	// objective with a fresh question set.
	ObjectiveIDs []string `json:"objective_ids,omitempty"`
	// Filter is an optional expression evaluated per question over
	// {stem, bloom, correct, edited}; questions it rejects are left out.
	Filter string `json:"filter,omitempty"`
}

// DefaultOptions switches every inclusion on, exports all objectives and
// applies no filter.
func DefaultOptions() Options {
	return Options{
		IncludeLOs:        true,
		IncludeBloom:      true,
		IncludeAnswerKey:  true,
		IncludeFeedback:   true,
		IncludeRationale:  true,
		IncludeContentRef: true,
	}
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	cp := o
	cp.ObjectiveIDs = append([]string(nil), o.ObjectiveIDs...)
	return cp
}
