package repository_test

import (
	"context"
	"testing"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardTop_FallsBackToDatabase(t *testing.T) {
	db := testutil.OpenDB(t)
	ledger := repository.NewLedgerRepository(db)
	board := repository.NewLeaderboardRepository(nil, repository.NewBalanceRepository(db))
	ctx := context.Background()

	for id, xp := range map[uint]int{1: 30, 2: 90, 3: 60, 4: 90} {
		_, err := ledger.Award(ctx, repository.AwardInput{StudentID: id, ClaimType: model.ClaimStudyGoal, ReferenceID: "seed", XP: xp})
		require.NoError(t, err)
	}

	// no-ops without redis
	board.Record(ctx, 1, 30)
	require.NoError(t, board.Rebuild(ctx))

	top, err := board.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []repository.LeaderboardEntry{
		{Rank: 1, StudentID: 2, XPTotal: 90},
		{Rank: 2, StudentID: 4, XPTotal: 90},
		{Rank: 3, StudentID: 3, XPTotal: 60},
	}, top)
}

func TestBalanceFindByStudent_DefaultsToZero(t *testing.T) {
	repo := repository.NewBalanceRepository(testutil.OpenDB(t))
	b, err := repo.FindByStudent(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), b.StudentID)
	assert.Zero(t, b.XPTotal)
}
