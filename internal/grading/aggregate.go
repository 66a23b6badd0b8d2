package grading

import "github.com/pkg/errors"

var ErrNoQuestions = errors.New("at least one question is required")

// GradeResult 一次作答的评分结果，奖励与掌握度字段在汇总后填充
type GradeResult struct {
	Score                int              `json:"score"`
	TotalQuestions       int              `json:"total_questions"`
	Percentage           int              `json:"percentage"`
	MeetsThreshold       bool             `json:"meets_threshold"`
	IncorrectSkillTags   []string         `json:"incorrect_skill_tags"`
	XPEarned             int              `json:"xp_earned"`
	CoinsEarned          int              `json:"coins_earned"`
	Feedback             string           `json:"feedback"`
	QuestionResults      []QuestionResult `json:"question_results"`
	MasteryUnlocked      *bool            `json:"mastery_unlocked,omitempty"`
	RewardAlreadyClaimed bool             `json:"reward_already_claimed,omitempty"`
}

// Percentage 正确率百分比，整数运算四舍五入
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}

// Aggregate 将逐题结果（与题目顺序一致）汇总为不含奖励的 GradeResult
func Aggregate(questions []Question, results []QuestionResult, passingScore int) (GradeResult, error) {
	if len(questions) == 0 {
		return GradeResult{}, ErrNoQuestions
	}
	if len(results) != len(questions) {
		return GradeResult{}, errors.Errorf("got %d results for %d questions", len(results), len(questions))
	}

	correct := 0
	tags := make([]string, 0)
	seen := make(map[string]bool)
	for i, r := range results {
		if r.IsCorrect {
			correct++
			continue
		}
		tag := questions[i].SkillTag
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	pct := Percentage(correct, len(questions))
	return GradeResult{
		Score:              correct,
		TotalQuestions:     len(questions),
		Percentage:         pct,
		MeetsThreshold:     pct >= passingScore,
		IncorrectSkillTags: tags,
		QuestionResults:    results,
	}, nil
}
