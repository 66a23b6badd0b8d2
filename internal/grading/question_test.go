package grading_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest_reward_backend/internal/grading"
)

func TestDecodeAnswerKey(t *testing.T) {
	tests := []struct {
		name    string
		qt      grading.QuestionType
		raw     string
		want    grading.AnswerKey
		wantErr bool
	}{
		{name: "multiple choice", qt: grading.MultipleChoice, raw: `"C"`, want: grading.MultipleChoiceKey{Option: "C"}},
		{name: "multiple choice array", qt: grading.MultipleChoice, raw: `["C"]`, wantErr: true},
		{name: "short answer", qt: grading.ShortAnswer, raw: `["a","b"]`, want: grading.ShortAnswerKey{Accepted: []string{"a", "b"}}},
		{name: "short answer bare string", qt: grading.ShortAnswer, raw: `"a"`, wantErr: true},
		{name: "short answer empty", qt: grading.ShortAnswer, raw: `[]`, wantErr: true},
		{name: "drag order", qt: grading.DragOrder, raw: `["x","y"]`, want: grading.DragOrderKey{Sequence: []string{"x", "y"}}},
		{name: "matching", qt: grading.Matching, raw: `[{"left":"a","right":"1"}]`, want: grading.MatchingKey{Pairs: []grading.MatchPair{{Left: "a", Right: "1"}}}},
		{name: "matching duplicate left", qt: grading.Matching, raw: `[{"left":"a","right":"1"},{"left":"a","right":"2"}]`, wantErr: true},
		{name: "matching object", qt: grading.Matching, raw: `{"a":"1"}`, wantErr: true},
		{name: "fill blank", qt: grading.FillBlank, raw: `["x"]`, want: grading.FillBlankKey{Blanks: []string{"x"}}},
		{name: "unknown type", qt: "essay", raw: `"x"`, wantErr: true},
		{name: "missing key", qt: grading.MultipleChoice, raw: ``, wantErr: true},
		{name: "null key", qt: grading.MultipleChoice, raw: `null`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := grading.DecodeAnswerKey(tt.qt, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, grading.ErrInvalidQuestion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionPayloadDecode(t *testing.T) {
	q, err := grading.QuestionPayload{
		ID:           "q7",
		Prompt:       "Order the planets",
		Type:         grading.DragOrder,
		AnswerKey:    json.RawMessage(`["mercury","venus"]`),
		SkillTag:     "astronomy",
		ExamCategory: "science",
	}.Decode()
	require.NoError(t, err)

	assert.Equal(t, "q7", q.ID)
	assert.Equal(t, "astronomy", q.SkillTag)
	assert.Equal(t, "mercury, venus", q.AnswerKey.Display())

	_, err = grading.QuestionPayload{Type: grading.DragOrder, AnswerKey: json.RawMessage(`["a"]`)}.Decode()
	assert.ErrorIs(t, err, grading.ErrInvalidQuestion)
}
