package service

import (
	"context"
	"testing"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/testutil"
	"quest_reward_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_PracticeSet(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	set := &model.PracticeSet{StudentID: 1, Status: model.StatusCompleted, Score: testutil.IntPtr(80), XPReward: 40, CoinReward: 10}
	require.NoError(t, f.db.Create(set).Error)

	req := ClaimRequest{StudentID: 1, ClaimType: model.ClaimPracticeSet, ReferenceID: set.ID, XPAmount: 40, CoinAmount: 10, Reason: "drill"}
	res, err := f.rewards.Claim(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.AlreadyClaimed)
	assert.Equal(t, 40, res.NewXPTotal)

	again, err := f.rewards.Claim(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.AlreadyClaimed)
	assert.Equal(t, res.NewXPTotal, again.NewXPTotal)
	assert.Equal(t, res.NewCoinsTotal, again.NewCoinsTotal)
	assert.Equal(t, 40, f.balance(t, 1).XPTotal)
}

func TestClaim_Rejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	done := &model.PracticeSet{StudentID: 1, Status: model.StatusCompleted, Score: testutil.IntPtr(80), XPReward: 40, CoinReward: 10}
	open := &model.PracticeSet{StudentID: 1, Status: model.StatusInProgress, Score: testutil.IntPtr(80), XPReward: 40}
	low := &model.PracticeSet{StudentID: 1, Status: model.StatusCompleted, Score: testutil.IntPtr(55), XPReward: 40}
	unscored := &model.PracticeSet{StudentID: 1, Status: model.StatusCompleted, XPReward: 40}
	for _, s := range []*model.PracticeSet{done, open, low, unscored} {
		require.NoError(t, f.db.Create(s).Error)
	}

	tests := []struct {
		name string
		req  ClaimRequest
		code util.ErrorCode
	}{
		{"missing entity", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: "nope", XPAmount: 1}, util.CodeNotFound},
		{"other student", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: done.ID, XPAmount: 1, StudentID: 2}, util.CodeUnauthorized},
		{"not completed", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: open.ID, XPAmount: 1}, util.CodeValidation},
		{"below min score", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: low.ID, XPAmount: 1}, util.CodeValidation},
		{"recorded score wins over reported", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: low.ID, XPAmount: 1, ValidationData: map[string]interface{}{"score": 99.0}}, util.CodeValidation},
		{"no score at all", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: unscored.ID, XPAmount: 1}, util.CodeValidation},
		{"xp over cap", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: done.ID, XPAmount: 41}, util.CodeValidation},
		{"coins over cap", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: done.ID, XPAmount: 1, CoinAmount: 11}, util.CodeValidation},
		{"both zero", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: done.ID}, util.CodeValidation},
		{"negative", ClaimRequest{ClaimType: model.ClaimPracticeSet, ReferenceID: done.ID, XPAmount: -5, CoinAmount: 1}, util.CodeValidation},
		{"unknown type", ClaimRequest{ClaimType: "raffle", ReferenceID: done.ID, XPAmount: 1}, util.CodeValidation},
		{"missing reference", ClaimRequest{ClaimType: model.ClaimPracticeSet, XPAmount: 1}, util.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if req.StudentID == 0 {
				req.StudentID = 1
			}
			_, err := f.rewards.Claim(ctx, req)
			assert.Equal(t, tt.code, util.CodeOf(err), "%v", err)
		})
	}

	assert.Zero(t, f.claimCount(t))
	assert.Zero(t, f.balance(t, 1).XPTotal)
}

func TestClaim_ReportedScoreUsedWhenNoneRecorded(t *testing.T) {
	f := newFixture(t, nil)
	session := &model.GameSession{StudentID: 1, Status: model.StatusCompleted, XPReward: 25, CoinReward: 5}
	require.NoError(t, f.db.Create(session).Error)

	req := ClaimRequest{StudentID: 1, ClaimType: model.ClaimGame, ReferenceID: session.ID, XPAmount: 25, CoinAmount: 5,
		ValidationData: map[string]interface{}{"score": 65.0}}
	_, err := f.rewards.Claim(context.Background(), req)
	assert.Equal(t, util.CodeValidation, util.CodeOf(err), "game needs 70")

	req.ValidationData["score"] = 70.0
	res, err := f.rewards.Claim(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 25, res.XPAwarded)
}

func TestClaim_StudyGoalCaps(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimStudyGoal, ReferenceID: "week-12", XPAmount: 51})
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))

	res, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimStudyGoal, ReferenceID: "week-12", XPAmount: 50, CoinAmount: 20})
	require.NoError(t, err)
	assert.Equal(t, 50, res.NewXPTotal)
	assert.Equal(t, 20, res.NewCoinsTotal)
}

func TestClaim_StudyGoalCapsFollowRuleReload(t *testing.T) {
	f := newFixture(t, nil)
	cfg := testConfig()
	cfg.Claims.StudyGoalMaxXP = 5
	f.rules.Apply(cfg)

	_, err := f.rewards.Claim(context.Background(), ClaimRequest{StudentID: 1, ClaimType: model.ClaimStudyGoal, ReferenceID: "g", XPAmount: 6})
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))
	assert.Equal(t, config.ClaimsConfig{PracticeSetMinScore: 60, GameMinScore: 70, StudyGoalMaxXP: 5, StudyGoalMaxCoins: 20}, f.rules.Claims())
}

func TestClaim_Assignment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	failed := &model.AssignmentAttempt{StudentID: 1, AssignmentID: "hw", Status: model.StatusCompleted, Percentage: 40, Passed: false}
	passed := &model.AssignmentAttempt{StudentID: 1, AssignmentID: "hw", Status: model.StatusCompleted, Percentage: 80, Passed: true, XPEarned: 30, CoinsEarned: 15}
	require.NoError(t, f.db.Create(failed).Error)
	require.NoError(t, f.db.Create(passed).Error)

	_, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimAssignment, ReferenceID: failed.ID, XPAmount: 1})
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))

	_, err = f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimAssignment, ReferenceID: passed.ID, XPAmount: 31})
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))

	res, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimAssignment, ReferenceID: passed.ID, XPAmount: 30, CoinAmount: 15})
	require.NoError(t, err)
	assert.Equal(t, 30, res.NewXPTotal)
}

func TestClaim_ChallengeMarker(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	challenge := &model.Challenge{StudentID: 1, Status: model.StatusCompleted, XPReward: 100, CoinReward: 50}
	require.NoError(t, f.db.Create(challenge).Error)

	req := ClaimRequest{StudentID: 1, ClaimType: model.ClaimChallenge, ReferenceID: challenge.ID, XPAmount: 100, CoinAmount: 50}
	res, err := f.rewards.Claim(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.AlreadyClaimed)

	stored, err := f.claimables.FindChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.True(t, stored.RewardClaimed)

	again, err := f.rewards.Claim(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.AlreadyClaimed)
	assert.Equal(t, 100, again.XPAwarded)
	assert.Equal(t, 50, again.CoinsAwarded)
	assert.Equal(t, res.NewXPTotal, again.NewXPTotal)
	assert.Equal(t, res.NewCoinsTotal, again.NewCoinsTotal)
	assert.Equal(t, 100, f.balance(t, 1).XPTotal)
	assert.Equal(t, int64(1), f.claimCount(t))
}

func TestClaim_ChallengeMarkedWithoutClaimRecord(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	challenge := &model.Challenge{StudentID: 1, Status: model.StatusCompleted, XPReward: 100, CoinReward: 50, RewardClaimed: true}
	require.NoError(t, f.db.Create(challenge).Error)

	_, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: 1, ClaimType: model.ClaimChallenge, ReferenceID: challenge.ID, XPAmount: 100})
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))
	assert.Zero(t, f.claimCount(t))
	assert.Zero(t, f.balance(t, 1).XPTotal)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for id, xp := range map[uint]int{1: 10, 2: 30, 3: 20} {
		_, err := f.rewards.Claim(ctx, ClaimRequest{StudentID: id, ClaimType: model.ClaimStudyGoal, ReferenceID: "g", XPAmount: xp})
		require.NoError(t, err)
	}

	top, err := f.rewards.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, uint(2), top[0].StudentID)
	assert.Equal(t, 3, top[2].Rank)

	_, err = f.rewards.Leaderboard(ctx, 101)
	assert.Equal(t, util.CodeValidation, util.CodeOf(err))
}
