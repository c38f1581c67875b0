package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks raw against the named contract and returns the typed
// payload. The payload is accepted or rejected as a whole: the first
// violated rule fails the call and nothing is repaired or dropped.
func Validate(name string, raw json.RawMessage) (any, error) {
	switch name {
	case Alignment:
		return DecodeAlignment(raw)
	case QuestionSet:
		return DecodeQuestionSet(raw)
	}
	return nil, fmt.Errorf("unknown contract %q", name)
}

// DecodeAlignment parses and validates an alignment payload.
func DecodeAlignment(raw json.RawMessage) (AlignmentResult, error) {
	var zero AlignmentResult
	obj, err := objectFields(Alignment, "", raw)
	if err != nil {
		return zero, err
	}

	label, err := requiredString(Alignment, obj, "", "label")
	if err != nil {
		return zero, err
	}
	if !AlignmentLabel(label).valid() {
		return zero, violation(Alignment, "label", "must be one of %s (got %q)", joinLabels(), label)
	}

	reasons, err := requiredStrings(Alignment, obj, "", "reasons")
	if err != nil {
		return zero, err
	}

	suggestion, err := requiredString(Alignment, obj, "", "suggestion")
	if err != nil {
		return zero, err
	}

	return AlignmentResult{
		Label:      AlignmentLabel(label),
		Reasons:    reasons,
		Suggestion: suggestion,
	}, nil
}

// DecodeQuestionSet parses and validates a question-set payload.
func DecodeQuestionSet(raw json.RawMessage) (QuestionSetResult, error) {
	var zero QuestionSetResult
	obj, err := objectFields(QuestionSet, "", raw)
	if err != nil {
		return zero, err
	}

	items, err := requiredArray(QuestionSet, obj, "", "questions")
	if err != nil {
		return zero, err
	}

	out := QuestionSetResult{Questions: make([]Question, 0, len(items))}
	for i, item := range items {
		path := fmt.Sprintf("questions[%d]", i)
		q, err := decodeQuestion(path, item)
		if err != nil {
			return zero, err
		}
		out.Questions = append(out.Questions, q)
	}
	return out, nil
}

func decodeQuestion(path string, raw json.RawMessage) (Question, error) {
	var zero Question
	obj, err := objectFields(QuestionSet, path, raw)
	if err != nil {
		return zero, err
	}

	stem, err := requiredString(QuestionSet, obj, path, "stem")
	if err != nil {
		return zero, err
	}

	optionsPath := joinPath(path, "options")
	items, err := requiredArray(QuestionSet, obj, path, "options")
	if err != nil {
		return zero, err
	}
	if len(items) != len(OptionIDs) {
		return zero, violation(QuestionSet, optionsPath, "exactly %d options required (got %d)", len(OptionIDs), len(items))
	}

	options := make([]Option, 0, len(OptionIDs))
	seen := make(map[string]string, len(OptionIDs))
	for j, item := range items {
		optPath := fmt.Sprintf("%s[%d]", optionsPath, j)
		oobj, err := objectFields(QuestionSet, optPath, item)
		if err != nil {
			return zero, err
		}
		id, err := requiredString(QuestionSet, oobj, optPath, "id")
		if err != nil {
			return zero, err
		}
		if id != OptionIDs[j] {
			return zero, violation(QuestionSet, joinPath(optPath, "id"), "must be %q in position %d (got %q)", OptionIDs[j], j, id)
		}
		text, err := requiredString(QuestionSet, oobj, optPath, "text")
		if err != nil {
			return zero, err
		}
		key := strings.TrimSpace(text)
		if prev, dup := seen[key]; dup {
			return zero, violation(QuestionSet, optionsPath, "duplicate option text %q (options %s and %s)", key, prev, id)
		}
		seen[key] = id
		options = append(options, Option{ID: id, Text: text})
	}

	correct, err := requiredString(QuestionSet, obj, path, "correct_option_id")
	if err != nil {
		return zero, err
	}
	if !validOptionID(correct) {
		return zero, violation(QuestionSet, joinPath(path, "correct_option_id"), "must be one of %s (got %q)", strings.Join(OptionIDs, ", "), correct)
	}

	rationale, err := optionalString(QuestionSet, obj, path, "rationale")
	if err != nil {
		return zero, err
	}
	contentRef, err := optionalString(QuestionSet, obj, path, "content_reference")
	if err != nil {
		return zero, err
	}

	var optionRationales map[string]string
	if field, ok := presentField(obj, "option_rationales"); ok {
		ratPath := joinPath(path, "option_rationales")
		robj, err := objectFields(QuestionSet, ratPath, field)
		if err != nil {
			return zero, err
		}
		optionRationales = make(map[string]string, len(robj))
		for id, v := range robj {
			if !validOptionID(id) {
				return zero, violation(QuestionSet, ratPath, "unknown option id %q (want one of %s)", id, strings.Join(OptionIDs, ", "))
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return zero, violation(QuestionSet, joinPath(ratPath, id), "expected a string")
			}
			optionRationales[id] = s
		}
	}

	return Question{
		Stem:             stem,
		Options:          options,
		CorrectOptionID:  correct,
		Rationale:        rationale,
		OptionRationales: optionRationales,
		ContentReference: contentRef,
	}, nil
}

func validOptionID(id string) bool {
	for _, v := range OptionIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Field walking ------------------------------------------------------------------

func objectFields(contract, path string, raw json.RawMessage) (map[string]json.RawMessage, error) {
	if isNull(raw) {
		return nil, violation(contract, path, "expected a JSON object (got null)")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, violation(contract, path, "expected a JSON object")
	}
	return obj, nil
}

func requiredString(contract string, obj map[string]json.RawMessage, path, name string) (string, error) {
	field, ok := presentField(obj, name)
	fieldPath := joinPath(path, name)
	if !ok {
		return "", violation(contract, fieldPath, "required string is missing")
	}
	var s string
	if err := json.Unmarshal(field, &s); err != nil {
		return "", violation(contract, fieldPath, "expected a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", violation(contract, fieldPath, "must not be empty")
	}
	return s, nil
}

func optionalString(contract string, obj map[string]json.RawMessage, path, name string) (string, error) {
	field, ok := presentField(obj, name)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(field, &s); err != nil {
		return "", violation(contract, joinPath(path, name), "expected a string")
	}
	return s, nil
}

func requiredStrings(contract string, obj map[string]json.RawMessage, path, name string) ([]string, error) {
	items, err := requiredArray(contract, obj, path, name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		elemPath := fmt.Sprintf("%s[%d]", joinPath(path, name), i)
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, violation(contract, elemPath, "expected a string")
		}
		if strings.TrimSpace(s) == "" {
			return nil, violation(contract, elemPath, "must not be empty")
		}
		out = append(out, s)
	}
	return out, nil
}

func requiredArray(contract string, obj map[string]json.RawMessage, path, name string) ([]json.RawMessage, error) {
	field, ok := presentField(obj, name)
	fieldPath := joinPath(path, name)
	if !ok {
		return nil, violation(contract, fieldPath, "required sequence is missing")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, violation(contract, fieldPath, "expected a sequence")
	}
	if len(items) == 0 {
		return nil, violation(contract, fieldPath, "must not be empty")
	}
	return items, nil
}

func presentField(obj map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	field, ok := obj[name]
	if !ok || isNull(field) {
		return nil, false
	}
	return field, true
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func (l AlignmentLabel) valid() bool {
	for _, allowed := range AlignmentLabels() {
		if l == allowed {
			return true
		}
	}
	return false
}

func joinLabels() string {
	labels := AlignmentLabels()
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}
