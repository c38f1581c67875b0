package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockClient returns deterministic, contract-valid payloads per stage so
// the whole workflow runs offline. Identical input always yields identical
// bytes, which keeps fingerprint-based caching observable in mock runs.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Name() string { return "Mock" }
func (m *MockClient) Close() error { return nil }

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	b, _ := json.Marshal(input)
	var in struct {
		Objective     string `json:"objective"`
		QuestionCount int    `json:"question_count"`
	}
	_ = json.Unmarshal(b, &in)

	switch StageFrom(ctx) {
	case "question-set":
		return m.questionSet(in.Objective, in.QuestionCount), nil
	default:
		return m.alignment(in.Objective), nil
	}
}

// An objective containing "misaligned" exercises the rejection path
// offline; everything else verifies as aligned.
func (m *MockClient) alignment(objective string) json.RawMessage {
	if strings.Contains(strings.ToLower(objective), "misaligned") {
		return marshal(map[string]any{
			"label": "not-aligned",
			"reasons": []string{
				"The objective's verb does not match the requested cognitive level.",
				"The module content does not cover the objective's topic.",
			},
			"suggestion": strings.TrimSpace(objective) + " (revised to match the module content)",
		})
	}
	return marshal(map[string]any{
		"label": "aligned",
		"reasons": []string{
			"The objective's verb matches the requested cognitive level.",
			"The module content covers the objective's topic.",
		},
		"suggestion": objective,
	})
}

func (m *MockClient) questionSet(objective string, count int) json.RawMessage {
	if count < 1 {
		count = 3
	}
	if count > 10 {
		count = 10
	}
	distractors := []string{
		"A statement the module content contradicts.",
		"A statement outside the module's scope.",
		"A statement that overstates the module's claims.",
	}
	questions := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		correct := []string{"A", "B", "C", "D"}[i%4]
		options := make([]map[string]any, 0, 4)
		rationales := map[string]string{}
		d := 0
		for _, id := range []string{"A", "B", "C", "D"} {
			text := "A statement the module content directly supports."
			rationale := "Restates module content at the requested level."
			if id != correct {
				text = distractors[d]
				rationale = "Not supported by the module content."
				d++
			}
			options = append(options, map[string]any{"id": id, "text": text})
			rationales[id] = rationale
		}
		questions = append(questions, map[string]any{
			"stem":              fmt.Sprintf("Q%d: Which statement is best supported by the module for this objective?", i+1),
			"options":           options,
			"correct_option_id": correct,
			"rationale":         "The correct option is the only one the module content supports.",
			"option_rationales": rationales,
			"content_reference": strings.TrimSpace(objective),
		})
	}
	return marshal(map[string]any{"questions": questions})
}

func marshal(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
