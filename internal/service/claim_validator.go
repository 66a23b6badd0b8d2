package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/util"
)

type ClaimRequest struct {
	StudentID      uint                   `json:"-"`
	ClaimType      model.ClaimType        `json:"claim_type" binding:"required"`
	ReferenceID    string                 `json:"reference_id" binding:"required,max=191"`
	XPAmount       int                    `json:"xp_amount" binding:"min=0"`
	CoinAmount     int                    `json:"coin_amount" binding:"min=0"`
	Reason         string                 `json:"reason" binding:"max=255"`
	ValidationData map[string]interface{} `json:"validation_data,omitempty"`
}

// ClaimPlan 校验通过的发放计划，OnCredit 钩子在账本事务内执行
type ClaimPlan struct {
	XP       int
	Coins    int
	Reason   string
	OnCredit []repository.CreditHook
}

// ClaimValidator 按引用实体校验领取，不得写入数据
type ClaimValidator interface {
	Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error)
}

type ClaimValidators map[model.ClaimType]ClaimValidator

func NewClaimValidators(repo *repository.ClaimableRepository, rules *RuleSet) ClaimValidators {
	return ClaimValidators{
		model.ClaimPracticeSet: &practiceSetValidator{repo: repo, rules: rules},
		model.ClaimGame:        &gameValidator{repo: repo, rules: rules},
		model.ClaimStudyGoal:   &studyGoalValidator{rules: rules},
		model.ClaimAssignment:  &assignmentValidator{repo: repo},
		model.ClaimChallenge:   &challengeValidator{repo: repo},
	}
}

type practiceSetValidator struct {
	repo  *repository.ClaimableRepository
	rules *RuleSet
}

func (v *practiceSetValidator) Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error) {
	set, err := v.repo.FindPracticeSet(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(set.StudentID, req.StudentID, "practice set"); err != nil {
		return nil, err
	}
	if err := checkCompleted(set.Status, "practice set"); err != nil {
		return nil, err
	}
	if err := checkScore(set.Score, req.ValidationData, v.rules.Claims().PracticeSetMinScore); err != nil {
		return nil, err
	}
	return planWithinCaps(req, set.XPReward, set.CoinReward)
}

type gameValidator struct {
	repo  *repository.ClaimableRepository
	rules *RuleSet
}

func (v *gameValidator) Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error) {
	session, err := v.repo.FindGameSession(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(session.StudentID, req.StudentID, "game session"); err != nil {
		return nil, err
	}
	if err := checkCompleted(session.Status, "game session"); err != nil {
		return nil, err
	}
	if err := checkScore(session.Score, req.ValidationData, v.rules.Claims().GameMinScore); err != nil {
		return nil, err
	}
	return planWithinCaps(req, session.XPReward, session.CoinReward)
}

// 学习目标没有实体可查，按固定上限校验
type studyGoalValidator struct {
	rules *RuleSet
}

func (v *studyGoalValidator) Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error) {
	claims := v.rules.Claims()
	return planWithinCaps(req, claims.StudyGoalMaxXP, claims.StudyGoalMaxCoins)
}

type assignmentValidator struct {
	repo *repository.ClaimableRepository
}

func (v *assignmentValidator) Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error) {
	attempt, err := v.repo.FindAssignmentAttempt(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(attempt.StudentID, req.StudentID, "assignment attempt"); err != nil {
		return nil, err
	}
	if err := checkCompleted(attempt.Status, "assignment attempt"); err != nil {
		return nil, err
	}
	if !attempt.Passed {
		return nil, util.NewValidationError("assignment attempt did not pass (%d%%)", attempt.Percentage)
	}
	return planWithinCaps(req, attempt.XPEarned, attempt.CoinsEarned)
}

type challengeValidator struct {
	repo *repository.ClaimableRepository
}

func (v *challengeValidator) Validate(ctx context.Context, req ClaimRequest) (*ClaimPlan, error) {
	challenge, err := v.repo.FindChallenge(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(challenge.StudentID, req.StudentID, "challenge"); err != nil {
		return nil, err
	}
	if err := checkCompleted(challenge.Status, "challenge"); err != nil {
		return nil, err
	}
	// 有领取记录的重放在此之前已返回，这里的标记只可能来自其他渠道
	if challenge.RewardClaimed {
		return nil, util.NewValidationError("challenge reward has already been claimed")
	}
	plan, err := planWithinCaps(req, challenge.XPReward, challenge.CoinReward)
	if err != nil {
		return nil, err
	}
	plan.OnCredit = append(plan.OnCredit, v.repo.MarkChallengeClaimed(challenge.ID))
	return plan, nil
}

func checkOwner(owner, studentID uint, what string) error {
	if owner != studentID {
		return util.NewUnauthorizedError("%s belongs to another student", what)
	}
	return nil
}

func checkCompleted(status model.CompletionStatus, what string) error {
	if status != model.StatusCompleted {
		return util.NewValidationError("%s is not completed", what)
	}
	return nil
}

// checkScore 以已记录分数为准，没有记录时才使用 validation_data 中上报的分数
func checkScore(recorded *int, data map[string]interface{}, minScore int) error {
	score, ok := 0, false
	if recorded != nil {
		score, ok = *recorded, true
	} else {
		score, ok = reportedScore(data)
	}
	if !ok {
		return util.NewValidationError("no score recorded")
	}
	if score < minScore {
		return util.NewValidationError("score %d%% is below the required %d%%", score, minScore)
	}
	return nil
}

func reportedScore(data map[string]interface{}) (int, bool) {
	switch v := data["score"].(type) {
	case float64:
		return int(math.Floor(v)), true
	case int:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return int(math.Floor(f)), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func planWithinCaps(req ClaimRequest, maxXP, maxCoins int) (*ClaimPlan, error) {
	if req.XPAmount > maxXP {
		return nil, util.NewValidationError("xp_amount %d exceeds the allowed %d", req.XPAmount, maxXP)
	}
	if req.CoinAmount > maxCoins {
		return nil, util.NewValidationError("coin_amount %d exceeds the allowed %d", req.CoinAmount, maxCoins)
	}
	return &ClaimPlan{XP: req.XPAmount, Coins: req.CoinAmount, Reason: req.Reason}, nil
}
