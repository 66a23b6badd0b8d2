package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quest_reward_backend/internal/model"
)

func TestMasteryRecordApply_UnlocksOnce(t *testing.T) {
	var m model.MasteryRecord
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, m.Apply(10, 6, 70, t0))
	assert.InDelta(t, 60.0, m.Percentage, 0.001)
	assert.False(t, m.Unlocked)

	assert.False(t, m.Apply(10, 5, 70, t0))
	assert.Equal(t, 20, m.QuestionsAttempted)
	assert.Equal(t, 11, m.QuestionsCorrect)
	assert.InDelta(t, 55.0, m.Percentage, 0.001)
	assert.False(t, m.Unlocked)

	// 20 more, all correct: 31/40 = 77.5%
	t1 := t0.Add(time.Hour)
	assert.True(t, m.Apply(20, 20, 70, t1))
	assert.True(t, m.Unlocked)
	assert.Equal(t, t1, *m.UnlockedAt)

	// a bad batch drags accuracy under the threshold but never relocks
	t2 := t1.Add(time.Hour)
	assert.False(t, m.Apply(40, 0, 70, t2))
	assert.Less(t, m.Percentage, 70.0)
	assert.True(t, m.Unlocked)
	assert.Equal(t, t1, *m.UnlockedAt)

	assert.False(t, m.Apply(1, 1, 70, t2))
	assert.Equal(t, t1, *m.UnlockedAt)
}

func TestClaimKey(t *testing.T) {
	k1 := model.ClaimKey(7, model.ClaimAssignment, "attempt-1")
	assert.Equal(t, k1, model.ClaimKey(7, model.ClaimAssignment, "attempt-1"))
	assert.NotEqual(t, k1, model.ClaimKey(8, model.ClaimAssignment, "attempt-1"))
	assert.NotEqual(t, k1, model.ClaimKey(7, model.ClaimChallenge, "attempt-1"))
	assert.NotEqual(t, k1, model.ClaimKey(7, model.ClaimAssignment, "attempt-2"))
	assert.Len(t, k1, 36)
}

func TestMasteryEventKey(t *testing.T) {
	assert.NotEqual(t,
		model.MasteryEventKey(1, "a:b", "c"),
		model.MasteryEventKey(1, "a", "b:c"),
	)
}
