package repository

import (
	"context"

	"quest_reward_backend/internal/model"
	"quest_reward_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimableRepository 加载奖励领取可引用的实体
type ClaimableRepository struct {
	DB *gorm.DB
}

func NewClaimableRepository(db *gorm.DB) *ClaimableRepository {
	return &ClaimableRepository{DB: db}
}

func (r *ClaimableRepository) FindPracticeSet(ctx context.Context, id string) (*model.PracticeSet, error) {
	var set model.PracticeSet
	if err := r.DB.WithContext(ctx).First(&set, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "practice set")
	}
	return &set, nil
}

func (r *ClaimableRepository) FindGameSession(ctx context.Context, id string) (*model.GameSession, error) {
	var session model.GameSession
	if err := r.DB.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "game session")
	}
	return &session, nil
}

func (r *ClaimableRepository) FindAssignmentAttempt(ctx context.Context, id string) (*model.AssignmentAttempt, error) {
	var attempt model.AssignmentAttempt
	if err := r.DB.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "assignment attempt")
	}
	return &attempt, nil
}

func (r *ClaimableRepository) FindChallenge(ctx context.Context, id string) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := r.DB.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "challenge")
	}
	return &challenge, nil
}

// SaveAttempt 保存作答的最新评分，已属于其他学生的作答 ID 会被拒绝
func (r *ClaimableRepository) SaveAttempt(ctx context.Context, attempt *model.AssignmentAttempt) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(attempt)
		if res.Error != nil {
			return errors.Wrap(res.Error, "insert assignment attempt")
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var existing model.AssignmentAttempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "id = ?", attempt.ID).Error; err != nil {
			return errors.Wrap(err, "lock assignment attempt")
		}
		if existing.StudentID != attempt.StudentID {
			return util.NewUnauthorizedError("attempt %s belongs to another student", attempt.ID)
		}
		if existing.AssignmentID != attempt.AssignmentID {
			return util.NewValidationError("attempt %s belongs to assignment %s", attempt.ID, existing.AssignmentID)
		}

		attempt.CreatedAt = existing.CreatedAt
		return errors.Wrap(tx.Save(attempt).Error, "update assignment attempt")
	})
}

// MarkChallengeClaimed 返回置位挑战领取标记的入账钩子，标记已被其他事务置位时失败
func (r *ClaimableRepository) MarkChallengeClaimed(id string) CreditHook {
	return func(tx *gorm.DB) error {
		res := tx.Model(&model.Challenge{}).
			Where("id = ? AND reward_claimed = ?", id, false).
			Update("reward_claimed", true)
		if res.Error != nil {
			return errors.Wrap(res.Error, "mark challenge claimed")
		}
		if res.RowsAffected == 0 {
			return util.NewValidationError("challenge reward has already been claimed")
		}
		return nil
	}
}
