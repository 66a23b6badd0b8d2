package grading

const (
	FeedbackExcellent      = "Excellent work! You have a strong grasp of this material."
	FeedbackGoodJob        = "Good job! You passed, keep building on it."
	FeedbackKeepPracticing = "Keep practicing! Review the missed skills and try again."
)

// RewardRules 奖励计算的可调参数
type RewardRules struct {
	PassingScore    int
	ExcellentScore  int
	XPPerCorrect    int
	CoinsPerCorrect int
}

// Calculate 计算一次作答的奖励，未达及格线一律为零
func (r RewardRules) Calculate(correct int, meetsThreshold bool) (xp, coins int) {
	if !meetsThreshold || correct <= 0 {
		return 0, 0
	}
	return correct * r.XPPerCorrect, correct * r.CoinsPerCorrect
}

type feedbackBand struct {
	min     int
	message string
}

// Feedback 按分数段返回评语
func (r RewardRules) Feedback(percentage int) string {
	bands := []feedbackBand{
		{min: r.ExcellentScore, message: FeedbackExcellent},
		{min: r.PassingScore, message: FeedbackGoodJob},
	}
	for _, b := range bands {
		if percentage >= b.min {
			return b.message
		}
	}
	return FeedbackKeepPracticing
}
