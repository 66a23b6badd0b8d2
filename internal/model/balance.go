package model

import "time"

// StudentBalance 学生经验与金币总额，只由奖励账本写入
type StudentBalance struct {
	StudentID  uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	XPTotal    int       `gorm:"not null;default:0" json:"xp_total"`
	CoinsTotal int       `gorm:"not null;default:0" json:"coins_total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (StudentBalance) TableName() string {
	return "student_balances"
}
