package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/grading"
	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/repository"
	"quest_reward_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Grading: config.GradingConfig{PassingScore: 60, ExcellentScore: 90, XPPerCorrect: 10, CoinsPerCorrect: 5},
		Mastery: config.MasteryConfig{UnlockThreshold: 70},
		Claims:  config.ClaimsConfig{PracticeSetMinScore: 60, GameMinScore: 70, StudyGoalMaxXP: 50, StudyGoalMaxCoins: 20},
	}
}

type fixture struct {
	db         *gorm.DB
	rules      *RuleSet
	claimables *repository.ClaimableRepository
	rewards    *RewardService
	mastery    *MasteryService
	grading    *GradingService
	notifier   *recordingNotifier
	archiver   *recordingArchiver
	background *Background
}

func newFixture(t *testing.T, judge grading.Judge) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	rules := NewRuleSet(testConfig())
	claimables := repository.NewClaimableRepository(db)
	balances := repository.NewBalanceRepository(db)
	rewards := NewRewardService(
		repository.NewLedgerRepository(db),
		balances,
		repository.NewLeaderboardRepository(nil, balances),
		NewClaimValidators(claimables, rules),
	)
	mastery := NewMasteryService(repository.NewMasteryRepository(db), rules)
	f := &fixture{
		db:         db,
		rules:      rules,
		claimables: claimables,
		rewards:    rewards,
		mastery:    mastery,
		notifier:   &recordingNotifier{},
		archiver:   &recordingArchiver{},
		background: &Background{},
	}
	f.grading = NewGradingService(judge, 50*time.Millisecond, rules, rewards, mastery, claimables, f.notifier, f.archiver, f.background)
	return f
}

func (f *fixture) balance(t *testing.T, studentID uint) *model.StudentBalance {
	t.Helper()
	b, err := f.rewards.Balance(context.Background(), studentID)
	require.NoError(t, err)
	return b
}

func (f *fixture) claimCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.ClaimRecord{}).Count(&n).Error)
	return n
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []SyncEvent
}

func (n *recordingNotifier) Send(ctx context.Context, event SyncEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type recordingArchiver struct {
	mu       sync.Mutex
	attempts []*ArchivedAttempt
}

func (a *recordingArchiver) Archive(ctx context.Context, att *ArchivedAttempt) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts = append(a.attempts, att)
	return "/archive/test", nil
}
