package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questgen/internal/contract"
)

func TestMockAlignmentSatisfiesContract(t *testing.T) {
	m := NewMockClient()
	ctx := WithStage(context.Background(), contract.Alignment)
	input := map[string]any{"objective": "Students will explain photosynthesis.", "level": "Understand"}

	raw, err := m.GenerateJSON(ctx, "check alignment", input)
	require.NoError(t, err)

	res, err := contract.DecodeAlignment(raw)
	require.NoError(t, err)
	assert.Equal(t, contract.Aligned, res.Label)
	assert.NotEmpty(t, res.Reasons)
}

func TestMockMisalignedScenario(t *testing.T) {
	m := NewMockClient()
	ctx := WithStage(context.Background(), contract.Alignment)
	input := map[string]any{"objective": "A deliberately misaligned objective."}

	raw, err := m.GenerateJSON(ctx, "check alignment", input)
	require.NoError(t, err)

	res, err := contract.DecodeAlignment(raw)
	require.NoError(t, err)
	assert.Equal(t, contract.NotAligned, res.Label)
	assert.NotEqual(t, "A deliberately misaligned objective.", res.Suggestion)
}

func TestMockQuestionSetSatisfiesContract(t *testing.T) {
	m := NewMockClient()
	ctx := WithStage(context.Background(), contract.QuestionSet)
	input := map[string]any{"objective": "Students will explain photosynthesis.", "question_count": 5}

	raw, err := m.GenerateJSON(ctx, "generate questions", input)
	require.NoError(t, err)

	res, err := contract.DecodeQuestionSet(raw)
	require.NoError(t, err)
	require.Len(t, res.Questions, 5)
	assert.Equal(t, "A", res.Questions[0].CorrectOptionID)
	assert.Equal(t, "B", res.Questions[1].CorrectOptionID, "correct option rotates")
	for _, q := range res.Questions {
		assert.NotEmpty(t, q.Correct())
	}
}

func TestMockIsDeterministic(t *testing.T) {
	m := NewMockClient()
	ctx := WithStage(context.Background(), contract.QuestionSet)
	input := map[string]any{"objective": "Students will explain photosynthesis.", "question_count": 2}

	a, err := m.GenerateJSON(ctx, "p", input)
	require.NoError(t, err)
	b, err := m.GenerateJSON(ctx, "p", input)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestStageContext(t *testing.T) {
	ctx := WithStage(context.Background(), "alignment")
	assert.Equal(t, "alignment", StageFrom(ctx))
	assert.Equal(t, "", StageFrom(context.Background()))
}
