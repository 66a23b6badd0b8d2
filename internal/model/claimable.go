package model

import (
	"gorm.io/datatypes"
)

type CompletionStatus string

const (
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

// PracticeSet 自主练习，Score 为已记录的得分百分比
type PracticeSet struct {
	UUIDBase
	StudentID  uint             `gorm:"index;not null" json:"student_id"`
	Title      string           `gorm:"size:255" json:"title"`
	Status     CompletionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	Score      *int             `json:"score,omitempty"`
	XPReward   int              `gorm:"not null;default:0" json:"xp_reward"`
	CoinReward int              `gorm:"not null;default:0" json:"coin_reward"`
}

func (PracticeSet) TableName() string {
	return "practice_sets"
}

// GameSession 一局教育小游戏
type GameSession struct {
	UUIDBase
	StudentID  uint             `gorm:"index;not null" json:"student_id"`
	GameKey    string           `gorm:"size:100" json:"game_key"`
	Status     CompletionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	Score      *int             `json:"score,omitempty"`
	XPReward   int              `gorm:"not null;default:0" json:"xp_reward"`
	CoinReward int              `gorm:"not null;default:0" json:"coin_reward"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

// AssignmentAttempt 作业作答的评分结果，XPEarned 与 CoinsEarned 是可领取的上限
type AssignmentAttempt struct {
	UUIDBase
	StudentID      uint             `gorm:"index;not null" json:"student_id"`
	AssignmentID   string           `gorm:"index;size:100;not null" json:"assignment_id"`
	Status         CompletionStatus `gorm:"size:20;default:'completed'" json:"status"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     int              `json:"percentage"`
	Passed         bool             `json:"passed"`
	XPEarned       int              `json:"xp_earned"`
	CoinsEarned    int              `json:"coins_earned"`
	Result         datatypes.JSON   `json:"result"`
}

func (AssignmentAttempt) TableName() string {
	return "assignment_attempts"
}

// Challenge 一次性挑战，RewardClaimed 由发放奖励的账本事务置位
type Challenge struct {
	UUIDBase
	StudentID     uint             `gorm:"index;not null" json:"student_id"`
	Title         string           `gorm:"size:255" json:"title"`
	Status        CompletionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	XPReward      int              `gorm:"not null;default:0" json:"xp_reward"`
	CoinReward    int              `gorm:"not null;default:0" json:"coin_reward"`
	RewardClaimed bool             `gorm:"not null;default:false" json:"reward_claimed"`
}

func (Challenge) TableName() string {
	return "challenges"
}
