package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	DragOrder      QuestionType = "drag_order"
	Matching       QuestionType = "matching"
	FillBlank      QuestionType = "fill_blank"
)

// ErrInvalidQuestion 题目解析失败时包装的哨兵错误
var ErrInvalidQuestion = errors.New("invalid question")

// Question 可评分的题目，AnswerKey 按题型保存标准答案
type Question struct {
	ID           string
	Prompt       string
	Type         QuestionType
	AnswerKey    AnswerKey
	SkillTag     string
	Difficulty   string
	ExamCategory string
}

// AnswerKey 仅由本包的答案类型实现
type AnswerKey interface {
	questionType() QuestionType
	// Display 结果页展示用的标准答案
	Display() string
}

type MultipleChoiceKey struct {
	Option string
}

// ShortAnswerKey 所有可接受的答案写法
type ShortAnswerKey struct {
	Accepted []string
}

type DragOrderKey struct {
	Sequence []string
}

type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchingKey struct {
	Pairs []MatchPair
}

type FillBlankKey struct {
	Blanks []string
}

func (MultipleChoiceKey) questionType() QuestionType { return MultipleChoice }
func (ShortAnswerKey) questionType() QuestionType    { return ShortAnswer }
func (DragOrderKey) questionType() QuestionType      { return DragOrder }
func (MatchingKey) questionType() QuestionType       { return Matching }
func (FillBlankKey) questionType() QuestionType      { return FillBlank }

func (k MultipleChoiceKey) Display() string { return k.Option }
func (k ShortAnswerKey) Display() string    { return strings.Join(k.Accepted, " / ") }
func (k DragOrderKey) Display() string      { return strings.Join(k.Sequence, ", ") }
func (k FillBlankKey) Display() string      { return strings.Join(k.Blanks, ", ") }

func (k MatchingKey) Display() string {
	parts := make([]string, 0, len(k.Pairs))
	for _, p := range k.Pairs {
		parts = append(parts, p.Left+" → "+p.Right)
	}
	return strings.Join(parts, ", ")
}

// QuestionPayload 评分请求中题目的传输格式
type QuestionPayload struct {
	ID           string          `json:"id" binding:"required"`
	Prompt       string          `json:"prompt"`
	Type         QuestionType    `json:"type" binding:"required"`
	AnswerKey    json.RawMessage `json:"answer_key" binding:"required"`
	SkillTag     string          `json:"skill_tag,omitempty"`
	Difficulty   string          `json:"difficulty,omitempty"`
	ExamCategory string          `json:"exam_category,omitempty"`
}

// Decode 按题型解析答案，转换为 Question
func (p QuestionPayload) Decode() (Question, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Question{}, errors.Wrap(ErrInvalidQuestion, "question id is required")
	}
	key, err := DecodeAnswerKey(p.Type, p.AnswerKey)
	if err != nil {
		return Question{}, errors.Wrapf(err, "question %s", p.ID)
	}
	return Question{
		ID:           p.ID,
		Prompt:       p.Prompt,
		Type:         p.Type,
		AnswerKey:    key,
		SkillTag:     p.SkillTag,
		Difficulty:   p.Difficulty,
		ExamCategory: p.ExamCategory,
	}, nil
}

// DecodeAnswerKey 按题型解析答案 JSON
//
//	multiple_choice  "B"
//	short_answer     ["photosynthesis", "photo synthesis"]
//	drag_order       ["first", "second", "third"]
//	matching         [{"left": "H2O", "right": "water"}]
//	fill_blank       ["paris", "1789"]
func DecodeAnswerKey(qt QuestionType, raw json.RawMessage) (AnswerKey, error) {
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, errors.Wrap(ErrInvalidQuestion, "answer_key is required")
	}

	switch qt {
	case MultipleChoice:
		var option string
		if err := json.Unmarshal(raw, &option); err != nil {
			return nil, errors.Wrap(ErrInvalidQuestion, "multiple_choice answer_key must be a string")
		}
		return MultipleChoiceKey{Option: option}, nil

	case ShortAnswer:
		var accepted []string
		if err := json.Unmarshal(raw, &accepted); err != nil {
			return nil, errors.Wrap(ErrInvalidQuestion, "short_answer answer_key must be an array of strings")
		}
		if len(accepted) == 0 {
			return nil, errors.Wrap(ErrInvalidQuestion, "short_answer answer_key needs at least one accepted answer")
		}
		return ShortAnswerKey{Accepted: accepted}, nil

	case DragOrder:
		var seq []string
		if err := json.Unmarshal(raw, &seq); err != nil || len(seq) == 0 {
			return nil, errors.Wrap(ErrInvalidQuestion, "drag_order answer_key must be a non-empty array of strings")
		}
		return DragOrderKey{Sequence: seq}, nil

	case Matching:
		var pairs []MatchPair
		if err := json.Unmarshal(raw, &pairs); err != nil || len(pairs) == 0 {
			return nil, errors.Wrap(ErrInvalidQuestion, "matching answer_key must be a non-empty array of {left, right} pairs")
		}
		seen := make(map[string]bool, len(pairs))
		for _, p := range pairs {
			if seen[p.Left] {
				return nil, errors.Wrapf(ErrInvalidQuestion, "matching answer_key repeats left value %q", p.Left)
			}
			seen[p.Left] = true
		}
		return MatchingKey{Pairs: pairs}, nil

	case FillBlank:
		var blanks []string
		if err := json.Unmarshal(raw, &blanks); err != nil || len(blanks) == 0 {
			return nil, errors.Wrap(ErrInvalidQuestion, "fill_blank answer_key must be a non-empty array of strings")
		}
		return FillBlankKey{Blanks: blanks}, nil
	}

	return nil, errors.Wrap(ErrInvalidQuestion, fmt.Sprintf("unknown question type %q", qt))
}
