package repository

import (
	"context"

	"quest_reward_backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type BalanceRepository struct {
	DB *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{DB: db}
}

// FindByStudent 从未入账的学生返回零余额
func (r *BalanceRepository) FindByStudent(ctx context.Context, studentID uint) (*model.StudentBalance, error) {
	var balance model.StudentBalance
	err := r.DB.WithContext(ctx).First(&balance, "student_id = ?", studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.StudentBalance{StudentID: studentID}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load balance")
	}
	return &balance, nil
}

func (r *BalanceRepository) FindTopByXP(ctx context.Context, limit int) ([]model.StudentBalance, error) {
	var balances []model.StudentBalance
	err := r.DB.WithContext(ctx).
		Order("xp_total DESC").
		Order("student_id ASC").
		Limit(limit).
		Find(&balances).Error
	return balances, errors.Wrap(err, "list top balances")
}
