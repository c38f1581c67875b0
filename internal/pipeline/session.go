package pipeline

import (
	"questgen/internal/bloom"
	"questgen/internal/export"
	"questgen/internal/fingerprint"
)

// ModuleTokenBudget caps the combined module content size.
const ModuleTokenBudget = 27000

// DefaultQuestionCount is used when an objective does not set its own.
const DefaultQuestionCount = 3

// MaxQuestionCount bounds the per-objective question count.
const MaxQuestionCount = 10

// ModuleContent is the module stage input: the combined normalized course
// text with its fingerprint and estimated token count. Immutable once
// fingerprinted; a new value replaces the whole struct.
type ModuleContent struct {
	Text        string             `json:"text"`
	Fingerprint fingerprint.Digest `json:"fingerprint"`
	Tokens      int                `json:"tokens"`
	Files       []string           `json:"files,omitempty"`
}

// IsSet reports whether any module content was provided.
func (m ModuleContent) IsSet() bool { return !m.Fingerprint.IsZero() }

// Objective is one learning-objective stage input.
type Objective struct {
	ID            string      `json:"id"`
	Text          string      `json:"text"`
	Level         bloom.Level `json:"level"`
	QuestionCount int         `json:"question_count"`
	// AcceptedText is the alignment suggestion the author accepted, if any.
	// It replaces Text as the questions-stage input but not as the
	// alignment-stage input: alignment always judges what the author wrote.
	AcceptedText string `json:"accepted_text,omitempty"`
}

// Effective returns the objective text the questions stage works from.
func (o Objective) Effective() string {
	if o.AcceptedText != "" {
		return o.AcceptedText
	}
	return o.Text
}

// Session holds the named stage inputs of one authoring session. The
// orchestrator owns it; the snapshot serializes it verbatim.
type Session struct {
	Module     ModuleContent  `json:"module"`
	Objectives []Objective    `json:"objectives"`
	Export     export.Options `json:"export_options"`
	// EditedQuestions marks objectives whose stored question set carries
	// author edits. Cleared on regeneration; exposed to export filters.
	EditedQuestions map[string]bool `json:"edited_questions,omitempty"`
}

func (s *Session) objective(id string) (*Objective, bool) {
	for i := range s.Objectives {
		if s.Objectives[i].ID == id {
			return &s.Objectives[i], true
		}
	}
	return nil, false
}

func (s *Session) clone() Session {
	cp := *s
	cp.Objectives = append([]Objective(nil), s.Objectives...)
	if s.EditedQuestions != nil {
		cp.EditedQuestions = make(map[string]bool, len(s.EditedQuestions))
		for k, v := range s.EditedQuestions {
			cp.EditedQuestions[k] = v
		}
	}
	cp.Export = s.Export.Clone()
	return cp
}

// Stage-input fingerprints. Struct fields marshal in declaration order, so
// each input key has one canonical serialization.

type alignmentKey struct {
	Objective string             `json:"objective"`
	Level     bloom.Level        `json:"level"`
	Module    fingerprint.Digest `json:"module"`
}

type questionsKey struct {
	Objective string             `json:"objective"`
	Level     bloom.Level        `json:"level"`
	Count     int                `json:"count"`
	Module    fingerprint.Digest `json:"module"`
}

type exportKey struct {
	Sets    []fingerprint.Digest `json:"sets"`
	Options export.Options       `json:"options"`
	Meta    []exportMetaKey      `json:"meta"`
}

type exportMetaKey struct {
	ID     string      `json:"id"`
	Text   string      `json:"text"`
	Level  bloom.Level `json:"level"`
	Edited bool        `json:"edited"`
}

func (s *Session) alignmentFingerprint(o *Objective) fingerprint.Digest {
	return fingerprint.JSON(alignmentKey{
		Objective: fingerprint.Canonical(o.Text),
		Level:     o.Level,
		Module:    s.Module.Fingerprint,
	})
}

func (s *Session) questionsFingerprint(o *Objective) fingerprint.Digest {
	return fingerprint.JSON(questionsKey{
		Objective: fingerprint.Canonical(o.Effective()),
		Level:     o.Level,
		Count:     o.QuestionCount,
		Module:    s.Module.Fingerprint,
	})
}
