package service

import (
	"sync"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/grading"
)

// RuleSet 可热更新的奖励与领取规则，配置文件变化时整体替换
type RuleSet struct {
	mu              sync.RWMutex
	reward          grading.RewardRules
	unlockThreshold int
	claims          config.ClaimsConfig
}

func NewRuleSet(cfg *config.Config) *RuleSet {
	r := &RuleSet{}
	r.Apply(cfg)
	return r
}

func (r *RuleSet) Apply(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reward = grading.RewardRules{
		PassingScore:    cfg.Grading.PassingScore,
		ExcellentScore:  cfg.Grading.ExcellentScore,
		XPPerCorrect:    cfg.Grading.XPPerCorrect,
		CoinsPerCorrect: cfg.Grading.CoinsPerCorrect,
	}
	r.unlockThreshold = cfg.Mastery.UnlockThreshold
	r.claims = cfg.Claims
}

func (r *RuleSet) Reward() grading.RewardRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reward
}

func (r *RuleSet) UnlockThreshold() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unlockThreshold
}

func (r *RuleSet) Claims() config.ClaimsConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.claims
}
