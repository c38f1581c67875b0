package export

import (
	"fmt"

	"questgen/internal/contract"
)

// Title heads every exported document.
const Title = "Assessment Questions"

const stemColor = "5F497A"

// Section is one objective's slice of the document.
type Section struct {
	Objective contract.ObjectiveMeta
	Questions []contract.Question
	Edited    bool
}

// AllFilteredError reports a filter expression that rejected every question
// of a selected objective.
type AllFilteredError struct {
	ObjectiveID string
	Filter      string
}

func (e *AllFilteredError) Error() string {
	return fmt.Sprintf("filter %q leaves no questions for objective %s", e.Filter, e.ObjectiveID)
}

// Render builds the .docx bytes for the given sections under opts. The
// filter, when set, is applied per question; a section reduced to zero
// questions fails the whole render.
func Render(sections []Section, opts Options) ([]byte, error) {
	filter, err := CompileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	b := &docBuilder{}
	b.paragraph(docRun{text: Title, props: runProps{bold: true, halfSize: 32}})
	b.blank()

	for _, sec := range sections {
		kept := make([]contract.Question, 0, len(sec.Questions))
		for _, q := range sec.Questions {
			ok, err := filter.Match(q, string(sec.Objective.Level), sec.Edited)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, q)
			}
		}
		if len(kept) == 0 {
			return nil, &AllFilteredError{ObjectiveID: sec.Objective.ID, Filter: opts.Filter}
		}

		if opts.IncludeLOs {
			b.paragraph(docRun{text: "Learning Objective: " + sec.Objective.Text, props: runProps{bold: true}})
			if opts.IncludeBloom {
				b.paragraph(docRun{text: "Bloom level: " + string(sec.Objective.Level), props: runProps{italic: true}})
			}
			b.blank()
		}

		for i, q := range kept {
			b.paragraph(docRun{
				text:  fmt.Sprintf("%d. %s", i+1, q.Stem),
				props: runProps{bold: true, color: stemColor},
			})
			for _, opt := range q.Options {
				props := runProps{}
				if opts.IncludeAnswerKey && opt.ID == q.CorrectOptionID {
					props = runProps{bold: true, highlight: "yellow"}
				}
				b.paragraph(docRun{text: fmt.Sprintf("%s. %s", opt.ID, opt.Text), props: props})
				if opts.IncludeFeedback {
					if rationale := q.OptionRationales[opt.ID]; rationale != "" {
						b.paragraph(docRun{text: "    " + rationale, props: runProps{italic: true}})
					}
				}
			}
			if opts.IncludeRationale && q.Rationale != "" {
				b.paragraph(docRun{text: "Rationale: " + q.Rationale, props: runProps{italic: true}})
			}
			if opts.IncludeContentRef && q.ContentReference != "" {
				b.paragraph(docRun{text: "Content reference: " + q.ContentReference, props: runProps{italic: true}})
			}
			b.blank()
		}
	}

	return b.bytes()
}
