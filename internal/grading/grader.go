package grading

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// JudgeRequest 简答题判定所需信息
type JudgeRequest struct {
	Prompt    string
	Accepted  []string
	Submitted string
}

type JudgeVerdict struct {
	Correct  bool
	Feedback string
}

// Judge 判定自由文本答案是否正确。实现可调用远程模型，失败时评分器回退到精确匹配
type Judge interface {
	JudgeShortAnswer(ctx context.Context, req JudgeRequest) (JudgeVerdict, error)
}

// FallbackObserver 简答题未经 AI 判定时回调，reason 为 "disabled"、"timeout" 或 "error"
type FallbackObserver func(questionID, reason string, err error)

type SubmittedAnswer struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type QuestionResult struct {
	QuestionID      string `json:"question_id"`
	IsCorrect       bool   `json:"is_correct"`
	CanonicalAnswer string `json:"canonical_answer"`
	SubmittedAnswer string `json:"submitted_answer"`
	Feedback        string `json:"feedback,omitempty"`
}

// Grader 逐题评分，零值只做简答题的确定性匹配
type Grader struct {
	judge        Judge
	judgeTimeout time.Duration
	onFallback   FallbackObserver
}

const defaultJudgeTimeout = 8 * time.Second

func NewGrader(judge Judge, judgeTimeout time.Duration, onFallback FallbackObserver) *Grader {
	if judgeTimeout <= 0 {
		judgeTimeout = defaultJudgeTimeout
	}
	return &Grader{judge: judge, judgeTimeout: judgeTimeout, onFallback: onFallback}
}

// Grade 不返回错误：无法按题型解析的答案直接判错
func (g *Grader) Grade(ctx context.Context, q Question, submitted string) QuestionResult {
	res := QuestionResult{
		QuestionID:      q.ID,
		SubmittedAnswer: submitted,
	}
	if q.AnswerKey == nil {
		return res
	}
	res.CanonicalAnswer = q.AnswerKey.Display()

	switch key := q.AnswerKey.(type) {
	case MultipleChoiceKey:
		res.IsCorrect = submitted == key.Option
	case ShortAnswerKey:
		res.IsCorrect, res.Feedback = g.gradeShortAnswer(ctx, q, key, submitted)
	case DragOrderKey:
		res.IsCorrect = gradeDragOrder(key, submitted)
	case MatchingKey:
		res.IsCorrect = gradeMatching(key, submitted)
	case FillBlankKey:
		res.IsCorrect = gradeFillBlank(key, submitted)
	}
	return res
}

func (g *Grader) gradeShortAnswer(ctx context.Context, q Question, key ShortAnswerKey, submitted string) (bool, string) {
	if g == nil || g.judge == nil {
		g.fallback(q.ID, "disabled", nil)
		return matchAnyNormalized(key.Accepted, submitted), ""
	}

	jctx, cancel := context.WithTimeout(ctx, g.judgeTimeout)
	defer cancel()

	type outcome struct {
		verdict JudgeVerdict
		err     error
	}
	done := make(chan outcome, 1)
	req := JudgeRequest{Prompt: q.Prompt, Accepted: key.Accepted, Submitted: submitted}
	go func() {
		v, err := g.judge.JudgeShortAnswer(jctx, req)
		done <- outcome{verdict: v, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-jctx.Done():
		out.err = jctx.Err()
	}

	if out.err != nil {
		reason := "error"
		if errors.Is(out.err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		g.fallback(q.ID, reason, out.err)
		return matchAnyNormalized(key.Accepted, submitted), ""
	}
	return out.verdict.Correct, out.verdict.Feedback
}

func (g *Grader) fallback(questionID, reason string, err error) {
	if g != nil && g.onFallback != nil {
		g.onFallback(questionID, reason, err)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchAnyNormalized(accepted []string, submitted string) bool {
	s := normalize(submitted)
	for _, a := range accepted {
		if normalize(a) == s {
			return true
		}
	}
	return false
}

func gradeDragOrder(key DragOrderKey, submitted string) bool {
	var seq []string
	if err := json.Unmarshal([]byte(submitted), &seq); err != nil {
		return false
	}
	if len(seq) != len(key.Sequence) {
		return false
	}
	for i := range seq {
		if seq[i] != key.Sequence[i] {
			return false
		}
	}
	return true
}

func gradeMatching(key MatchingKey, submitted string) bool {
	var mapping map[string]string
	if err := json.Unmarshal([]byte(submitted), &mapping); err != nil {
		return false
	}
	if len(mapping) != len(key.Pairs) {
		return false
	}
	for _, p := range key.Pairs {
		right, ok := mapping[p.Left]
		if !ok || right != p.Right {
			return false
		}
	}
	return true
}

func gradeFillBlank(key FillBlankKey, submitted string) bool {
	var fills []string
	if err := json.Unmarshal([]byte(submitted), &fills); err != nil {
		return false
	}
	if len(fills) != len(key.Blanks) {
		return false
	}
	for i := range fills {
		if normalize(fills[i]) != normalize(key.Blanks[i]) {
			return false
		}
	}
	return true
}
